package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	progressout "dojo/internal/modules/progress/adapter/out"
	"dojo/internal/modules/progress/domain"
	"dojo/internal/platform/clock"
	apperrors "dojo/internal/platform/errors"
	"dojo/internal/platform/tx"
)

var fixedNow = clock.Fixed(time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC))

func passEntry(id string) domain.LogEntry {
	return domain.LogEntry{
		ID:          id,
		KataSlug:    "age-calculator",
		SessionID:   "sess-1",
		Timestamp:   time.Time(fixedNow),
		QualityTier: "first-try",
		Verified:    true,
		Completion:  true,
		Pillars:     []string{"python-fundamentals"},
		XPAwarded:   25,
	}
}

func TestLoadMissingFileReturnsFreshProfile(t *testing.T) {
	t.Parallel()
	store := progressout.NewFileStore(filepath.Join(t.TempDir(), "progress.json"), nil, fixedNow)
	profile, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if profile.SchemaVersion != domain.SchemaVersion || len(profile.Log) != 0 || profile.XPByPillar == nil {
		t.Fatalf("unexpected fresh profile %+v", profile)
	}
}

func TestAppendLogPersistsAndIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".dojo", "progress.json")
	store := progressout.NewFileStore(path, tx.NewFileLockManager(path+".lock"), fixedNow)

	if _, err := store.AppendLog(context.Background(), passEntry("e1")); err != nil {
		t.Fatalf("append: %v", err)
	}
	profile, err := store.AppendLog(context.Background(), passEntry("e1"))
	if err != nil {
		t.Fatalf("retry append: %v", err)
	}
	if profile.XPByPillar["python-fundamentals"] != 25 || profile.CompletedCount != 1 || len(profile.Log) != 1 {
		t.Fatalf("retry must not double award: %+v", profile)
	}

	reopened := progressout.NewFileStore(path, nil, fixedNow)
	loaded, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.XPByPillar["python-fundamentals"] != 25 || !loaded.UpdatedAt.Equal(time.Time(fixedNow)) {
		t.Fatalf("unexpected reloaded profile %+v", loaded)
	}
}

func TestCorruptDocumentIsSurfaced(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte(`{"xp_by_pillar": {"cli": 3`), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := progressout.NewFileStore(path, nil, fixedNow)
	_, err := store.Load(context.Background())
	if !errors.Is(err, apperrors.ErrCorruptState) {
		t.Fatalf("expected corrupt state, got %v", err)
	}
	var corrupt *apperrors.CorruptStateError
	if !errors.As(err, &corrupt) || corrupt.Path != path {
		t.Fatalf("expected CorruptStateError for %s, got %v", path, err)
	}
	if _, err := store.AppendLog(context.Background(), passEntry("e1")); !errors.Is(err, apperrors.ErrCorruptState) {
		t.Fatalf("writes must not paper over corruption, got %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(raw), `{"xp_by_pillar"`) {
		t.Fatalf("corrupt document must be left in place, got %q", raw)
	}
}

func TestCrashBeforeReplaceKeepsPreviousDocument(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "progress.json")
	healthy := progressout.NewFileStore(path, nil, fixedNow)
	if _, err := healthy.AppendLog(context.Background(), passEntry("e1")); err != nil {
		t.Fatalf("seed append: %v", err)
	}

	crash := errors.New("power loss")
	var leftover string
	crashing := progressout.NewFileStoreWithCrash(path, nil, fixedNow, func(tmpPath string) error {
		partial, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}
		leftover = filepath.Join(dir, ".progress-crashed.tmp")
		if err := os.WriteFile(leftover, partial[:len(partial)/2], 0o644); err != nil {
			return err
		}
		return crash
	})
	if _, err := crashing.AppendLog(context.Background(), passEntry("e2")); !errors.Is(err, crash) {
		t.Fatalf("expected simulated crash, got %v", err)
	}

	after, err := healthy.Load(context.Background())
	if err != nil {
		t.Fatalf("load after crash: %v", err)
	}
	if len(after.Log) != 1 || after.Log[0].ID != "e1" || after.XPByPillar["python-fundamentals"] != 25 {
		t.Fatalf("expected the pre-crash document, got %+v", after)
	}

	retried, err := healthy.AppendLog(context.Background(), passEntry("e2"))
	if err != nil {
		t.Fatalf("retry after restart: %v", err)
	}
	if len(retried.Log) != 2 || retried.XPByPillar["python-fundamentals"] != 50 || retried.CompletedCount != 2 {
		t.Fatalf("expected the retried entry fully recorded once, got %+v", retried)
	}
	if _, err := os.Stat(leftover); err != nil {
		t.Fatalf("stray temp file should be ignored, not consumed: %v", err)
	}
}

func TestSaveRejectsXPDecrease(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "progress.json")
	store := progressout.NewFileStore(path, nil, fixedNow)
	profile, err := store.AppendLog(context.Background(), passEntry("e1"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	profile.XPByPillar["python-fundamentals"] = 5
	if err := store.Save(context.Background(), profile); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected xp decrease to be rejected, got %v", err)
	}
	profile.XPByPillar["python-fundamentals"] = 30
	if err := store.Save(context.Background(), profile); err != nil {
		t.Fatalf("save growth: %v", err)
	}
}

func TestUpdateErrorLeavesDocumentUntouched(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "progress.json")
	store := progressout.NewFileStore(path, nil, fixedNow)
	if _, err := store.AppendLog(context.Background(), passEntry("e1")); err != nil {
		t.Fatalf("append: %v", err)
	}
	before, _ := os.ReadFile(path)
	boom := errors.New("rule violated")
	_, err := store.Update(context.Background(), func(p *domain.Profile) error {
		p.ActiveSlug = "other"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Fatalf("document changed after failed update")
	}
}

func TestConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "progress.json")
	lock := tx.NewFileLockManager(path + ".lock")
	store := progressout.NewFileStore(path, lock, fixedNow)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			entry := passEntry(string(rune('a' + n)))
			if _, err := store.AppendLog(context.Background(), entry); err != nil {
				t.Errorf("append %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	profile, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(profile.Log) != 10 || profile.XPByPillar["python-fundamentals"] != 250 {
		t.Fatalf("expected 10 entries and 250 xp, got %d entries and %d xp", len(profile.Log), profile.XPByPillar["python-fundamentals"])
	}
}
