// Package manifest loads store definitions from YAML or JSON files and turns
// them into asset stores through a [stores.Registry]
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/assetfs"
	"github.com/brettbedarf/assetfs/internal/util"
	"github.com/brettbedarf/assetfs/stores"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadFile reads the store definition at path and returns it as JSON. YAML
// files are decoded and re-encoded so every provider only deals with JSON
func LoadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if !json.Valid(data) {
			return nil, errors.Errorf("store definition %s is not valid JSON", path)
		}
		return data, nil
	case ".yaml", ".yml":
		return yamlToJSON(data)
	default:
		return nil, errors.Errorf("unknown store definition extension: %s", path)
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var def map[string]any
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal store definition")
	}
	if def == nil {
		return nil, errors.New("store definition is empty")
	}
	out, err := json.Marshal(def)
	if err != nil {
		return nil, errors.Wrap(err, "store definition can't be expressed as JSON")
	}
	return out, nil
}

// GetStoreType extracts the store type from a JSON definition without full unmarshaling
func GetStoreType(raw []byte) (string, error) {
	var meta struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", err
	}
	return meta.Type, nil
}

// Build loads the definition at path and constructs its store with reg
func Build(reg *stores.Registry, path string) (assetfs.AssetStore, error) {
	logger := util.GetLogger("Manifest")

	raw, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	storeType, err := GetStoreType(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read store type from %s", path)
	}
	store, err := reg.NewStore(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't build %q store from %s", storeType, path)
	}
	logger.Debug().Str("path", path).Str("type", storeType).Msg("Store built from definition")
	return store, nil
}
