package api_keys

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteJSONFile overwrites path with the mapping as a flat JSON object.
func WriteJSONFile(path string, keys map[string]string) error {
	if keys == nil {
		keys = map[string]string{}
	}

	data, err := json.MarshalIndent(keys, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling api keys: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}

	return nil
}

func ReadJSONFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	keys := map[string]string{}
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("unmarshaling api keys from %s: %w", path, err)
	}

	return keys, nil
}

// Import stores every pair of keys into repo, replacing existing entries.
func Import(repo Repository, keys map[string]string) error {
	for db, key := range keys {
		if err := repo.Set(db, key); err != nil {
			return fmt.Errorf("setting api key for %s: %w", db, err)
		}
	}
	return nil
}
