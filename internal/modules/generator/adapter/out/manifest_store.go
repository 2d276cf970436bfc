package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dojo/internal/modules/generator/domain"
	generatorout "dojo/internal/modules/generator/port/out"
)

const ManifestFile = "plugins.json"

// FileManifestStore reads the plugin manifest list from <dir>/plugins.json.
// Relative binaries resolve against dir.
type FileManifestStore struct {
	dir string
}

func NewFileManifestStore(dir string) generatorout.ManifestStore {
	return &FileManifestStore{dir: dir}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	path := filepath.Join(s.dir, ManifestFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var manifests []domain.Manifest
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	seen := make(map[string]struct{}, len(manifests))
	for i := range manifests {
		name := manifests[i].Name
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate plugin name %q in %s", name, path)
		}
		seen[name] = struct{}{}
		if bin := manifests[i].Binary; bin != "" && !filepath.IsAbs(bin) {
			manifests[i].Binary = filepath.Clean(filepath.Join(s.dir, bin))
		}
	}
	return manifests, nil
}
