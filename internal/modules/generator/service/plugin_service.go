package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"dojo/internal/modules/generator/domain"
	"dojo/internal/modules/generator/dto"
	generatorout "dojo/internal/modules/generator/port/out"
)

// PluginService resolves the configured plugin from the manifest store and
// forwards generator calls to it through the host.
type PluginService struct {
	store  generatorout.ManifestStore
	host   generatorout.Host
	plugin string
}

func NewPluginService(store generatorout.ManifestStore, host generatorout.Host, plugin string) *PluginService {
	return &PluginService{store: store, host: host, plugin: plugin}
}

func (s *PluginService) Generate(ctx context.Context, req domain.Request) (domain.Exercise, error) {
	manifest, err := s.runnable(ctx, domain.CapabilityGenerate)
	if err != nil {
		return domain.Exercise{}, err
	}
	return s.host.Generate(ctx, manifest, req)
}

func (s *PluginService) Diagnose(ctx context.Context, detail domain.FailureDetail) (string, error) {
	manifest, err := s.runnable(ctx, domain.CapabilityDiagnose)
	if err != nil {
		return "", err
	}
	return s.host.Diagnose(ctx, manifest, detail)
}

func (s *PluginService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.BinaryReachable = fileExists(m.Binary)
		if !result.BinaryReachable {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
			results = append(results, result)
			continue
		}
		result.ChecksumValid = checksumMatches(m.Binary, m.SHA256) == nil
		switch {
		case !result.ChecksumValid:
			result.Error = "checksum mismatch"
		case !m.Enabled:
			result.Error = "disabled"
		case s.host != nil:
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *PluginService) runnable(ctx context.Context, capability domain.Capability) (domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	var manifest domain.Manifest
	found := false
	for _, m := range manifests {
		if m.Name == s.plugin {
			manifest, found = m, true
			break
		}
	}
	if !found {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrPluginNotFound, s.plugin)
	}
	if err := manifest.Validate(); err != nil {
		return domain.Manifest{}, err
	}
	if !manifest.Enabled {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrPluginDisabled, s.plugin)
	}
	if !manifest.HasCapability(capability) {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrCapabilityMissing, capability)
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return domain.Manifest{}, err
	}
	return manifest, nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
