package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dojo/internal/modules/progress/domain"
	progressout "dojo/internal/modules/progress/port/out"
	"dojo/internal/platform/clock"
	apperrors "dojo/internal/platform/errors"
	"dojo/internal/platform/tx"
)

type FileStore struct {
	path  string
	lock  tx.Manager
	clock clock.Clock

	// beforeRename runs after the temp file is durable and before it replaces
	// the document.
	beforeRename func(tmpPath string) error
}

func NewFileStore(path string, lock tx.Manager, clk clock.Clock) progressout.Store {
	return newFileStore(path, lock, clk)
}

func newFileStore(path string, lock tx.Manager, clk clock.Clock) *FileStore {
	if lock == nil {
		lock = tx.NoopManager{}
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &FileStore{path: path, lock: lock, clock: clk}
}

func (s *FileStore) Load(_ context.Context) (domain.Profile, error) {
	return s.read()
}

func (s *FileStore) Save(ctx context.Context, profile domain.Profile) error {
	return s.lock.Within(ctx, func(context.Context) error {
		current, err := s.read()
		if err != nil {
			return err
		}
		next := profile.Clone()
		next.Normalize()
		if err := current.CheckGrowth(next); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		return s.write(next)
	})
}

func (s *FileStore) AppendLog(ctx context.Context, entry domain.LogEntry) (domain.Profile, error) {
	return s.Update(ctx, func(p *domain.Profile) error {
		_, err := p.Apply(entry)
		return err
	})
}

func (s *FileStore) Update(ctx context.Context, fn func(*domain.Profile) error) (domain.Profile, error) {
	var result domain.Profile
	err := s.lock.Within(ctx, func(context.Context) error {
		current, err := s.read()
		if err != nil {
			return err
		}
		next := current.Clone()
		if err := fn(&next); err != nil {
			return err
		}
		next.Normalize()
		if err := current.CheckGrowth(next); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		if err := s.write(next); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return result, nil
}

func (s *FileStore) read() (domain.Profile, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewProfile(), nil
		}
		return domain.Profile{}, fmt.Errorf("read progress: %w", err)
	}
	profile := domain.Profile{}
	if err := json.Unmarshal(payload, &profile); err != nil {
		return domain.Profile{}, &apperrors.CorruptStateError{Path: s.path, Err: err}
	}
	if profile.SchemaVersion > domain.SchemaVersion {
		return domain.Profile{}, &apperrors.CorruptStateError{Path: s.path, Err: fmt.Errorf("unsupported schema version %d", profile.SchemaVersion)}
	}
	profile.Normalize()
	return profile, nil
}

func (s *FileStore) write(profile domain.Profile) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create progress dir: %w", err)
	}
	profile.SchemaVersion = domain.SchemaVersion
	profile.UpdatedAt = s.clock.Now()
	payload, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	payload = append(payload, '\n')

	tmp, err := os.CreateTemp(dir, ".progress-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp progress: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp progress: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp progress: %w", err)
	}
	if s.beforeRename != nil {
		if err := s.beforeRename(tmpPath); err != nil {
			return err
		}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace progress: %w", err)
	}
	committed = true
	syncDir(dir)
	return nil
}

func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = f.Sync()
	_ = f.Close()
}
