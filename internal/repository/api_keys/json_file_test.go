package api_keys_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/horockey/hydrakv/internal/repository/api_keys"
	"github.com/horockey/hydrakv/internal/repository/api_keys/inmemory_api_keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_WriteReadJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_keys.json")
	keys := map[string]string{"users": "k1", "orders": "k2"}

	require.NoError(t, api_keys.WriteJSONFile(path, keys))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	raw := map[string]string{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, keys, raw)

	got, err := api_keys.ReadJSONFile(path)
	require.NoError(t, err)
	assert.Equal(t, keys, got)
}

func Test_WriteJSONFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_keys.json")

	require.NoError(t, api_keys.WriteJSONFile(path, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, api_keys.WriteJSONFile(path, map[string]string{"c": "3"}))

	got, err := api_keys.ReadJSONFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c": "3"}, got)
}

func Test_WriteJSONFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_keys.json")

	require.NoError(t, api_keys.WriteJSONFile(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func Test_ReadJSONFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := api_keys.ReadJSONFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`["not", "an", "object"]`), 0o600))
	_, err = api_keys.ReadJSONFile(bad)
	assert.Error(t, err)
}

func Test_Import(t *testing.T) {
	repo := inmemory_api_keys.New()
	require.NoError(t, repo.Set("users", "old"))

	require.NoError(t, api_keys.Import(repo, map[string]string{"users": "new", "orders": "k2"}))

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"users": "new", "orders": "k2"}, all)
}
