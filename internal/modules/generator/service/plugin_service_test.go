package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dojo/internal/modules/generator/domain"
	"dojo/internal/modules/generator/service"
)

type fakeStore struct {
	manifests []domain.Manifest
}

func (s fakeStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type fakeHost struct {
	lifecycleErr error
	calls        int
}

func (h *fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return h.lifecycleErr }
func (h *fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "sensei", Version: "1"}, nil
}
func (h *fakeHost) Generate(_ context.Context, m domain.Manifest, req domain.Request) (domain.Exercise, error) {
	h.calls++
	return domain.Exercise{Title: "Age Calculator", Mission: req.Pillar, Source: "plugin:" + m.Name}, nil
}
func (h *fakeHost) Diagnose(context.Context, domain.Manifest, domain.FailureDetail) (string, error) {
	h.calls++
	return "check the leap year", nil
}

func manifestWithBinary(t *testing.T, enabled bool, capabilities ...domain.Capability) domain.Manifest {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "sensei")
	if err := os.WriteFile(binPath, []byte("binary"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	hash := sha256.Sum256([]byte("binary"))
	return domain.Manifest{
		Name:         "sensei",
		Version:      "1.0.0",
		Binary:       binPath,
		SHA256:       hex.EncodeToString(hash[:]),
		Enabled:      enabled,
		Capabilities: capabilities,
	}
}

func TestGenerateRoutesToHost(t *testing.T) {
	t.Parallel()
	host := &fakeHost{}
	m := manifestWithBinary(t, true, domain.CapabilityGenerate)
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{m}}, host, "sensei")
	got, err := svc.Generate(context.Background(), domain.Request{Pillar: "cli"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got.Source != "plugin:sensei" || host.calls != 1 {
		t.Fatalf("unexpected result %+v calls=%d", got, host.calls)
	}
}

func TestResolveRejections(t *testing.T) {
	t.Parallel()
	tampered := manifestWithBinary(t, true, domain.CapabilityGenerate, domain.CapabilityDiagnose)
	tampered.SHA256 = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	cases := []struct {
		name     string
		manifest domain.Manifest
		plugin   string
		want     error
	}{
		{"disabled", manifestWithBinary(t, false, domain.CapabilityDiagnose), "sensei", domain.ErrPluginDisabled},
		{"missing capability", manifestWithBinary(t, true, domain.CapabilityGenerate), "sensei", domain.ErrCapabilityMissing},
		{"unknown plugin", manifestWithBinary(t, true, domain.CapabilityDiagnose), "other", domain.ErrPluginNotFound},
		{"checksum", tampered, "sensei", domain.ErrChecksumMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			host := &fakeHost{}
			svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{tc.manifest}}, host, tc.plugin)
			_, err := svc.Diagnose(context.Background(), domain.FailureDetail{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if host.calls != 0 {
				t.Fatalf("host must not be called")
			}
		})
	}
}

func TestDoctorReportsEachManifest(t *testing.T) {
	t.Parallel()
	healthy := manifestWithBinary(t, true, domain.CapabilityGenerate)
	missing := manifestWithBinary(t, true, domain.CapabilityGenerate)
	missing.Name = "ghost"
	missing.Binary = filepath.Join(t.TempDir(), "absent")
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{healthy, missing}}, &fakeHost{}, "sensei")

	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected two results, got %d", len(results))
	}
	if !results[0].ChecksumValid || !results[0].LifecycleOK || results[0].Error != "" {
		t.Fatalf("healthy plugin reported %+v", results[0])
	}
	if results[1].BinaryReachable || results[1].Error == "" {
		t.Fatalf("missing binary reported %+v", results[1])
	}
}
