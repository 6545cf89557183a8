// Tests for the JSON document backend.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

func TestJSONDocument_FileLayout(t *testing.T) {
	dir := t.TempDir()
	e := openTestEngine(t, types.BackendJSON, dir)

	r := newRecord(t, types.ClassUser)
	require.NoError(t, r.Set("email", "betty@example.com"))
	require.NoError(t, e.New(r))

	data, err := os.ReadFile(filepath.Join(dir, types.DefaultJSONFile))
	require.NoError(t, err)

	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	want := map[string]map[string]any{
		r.Key(): {
			"__class__":  "User",
			"id":         r.ID,
			"created_at": r.CreatedAt.Format(types.TimeLayout),
			"updated_at": r.UpdatedAt.Format(types.TimeLayout),
			"email":      "betty@example.com",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONDocument_LoadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "BaseModel.2dd6ef5c-467c-4f82-9521-a772ea7d84e9": {
    "__class__": "BaseModel",
    "id": "2dd6ef5c-467c-4f82-9521-a772ea7d84e9",
    "created_at": "2017-10-02T11:06:51.432138",
    "updated_at": "2017-10-02T11:06:51.432148",
    "name": "My_First_Model",
    "my_number": 89
  },
  "Spaceship.1": {"__class__": "Spaceship", "id": "1"},
  "User.broken": "not an object",
  "City.no-id": {"__class__": "City"}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, types.DefaultJSONFile), []byte(content), 0o644))

	e := openTestEngine(t, types.BackendJSON, dir)

	all := e.All()
	require.Len(t, all, 1, "invalid entries are skipped")
	r := all[0]
	assert.Equal(t, "BaseModel.2dd6ef5c-467c-4f82-9521-a772ea7d84e9", r.Key())
	assert.Equal(t, "My_First_Model", r.Attributes["name"])
	assert.Equal(t, float64(89), r.Attributes["my_number"])
	assert.Equal(t, 2017, r.CreatedAt.Year())
}

func TestJSONDocument_SkipsMismatchedKeys(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "User.abc": {"__class__": "User", "id": "abc", "name": "kept"},
  "User.zzz": {"__class__": "User", "id": "abc", "name": "stray"},
  "City.abc": {"__class__": "User", "id": "def", "name": "stray"}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, types.DefaultJSONFile), []byte(content), 0o644))

	e := openTestEngine(t, types.BackendJSON, dir)

	all := e.All()
	require.Len(t, all, 1)
	assert.Equal(t, "User.abc", all[0].Key())
	assert.Equal(t, "kept", all[0].Attributes["name"])
}

func TestJSONDocument_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, types.DefaultJSONFile), nil, 0o644))

	e := openTestEngine(t, types.BackendJSON, dir)
	assert.Empty(t, e.All())
}

func TestJSONDocument_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, types.DefaultJSONFile), []byte("{not json"), 0o644))

	_, err := Open(types.Config{Backend: types.BackendJSON, DataDir: dir}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load store")
}

func TestJSONDocument_CustomFileName(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(types.Config{Backend: types.BackendJSON, DataDir: dir, FileName: "objects.json"}, nil)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.New(newRecord(t, types.ClassAmenity)))
	assert.Equal(t, filepath.Join(dir, "objects.json"), e.Path())
	_, err = os.Stat(filepath.Join(dir, "objects.json"))
	assert.NoError(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")

	require.NoError(t, writeFileAtomic(path, []byte(`{"a":1}`)))
	require.NoError(t, writeFileAtomic(path, []byte(`{"b":2}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left behind: %s", e.Name())
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	err := writeFileAtomic(filepath.Join(t.TempDir(), "missing", "doc.json"), []byte("{}"))
	assert.Error(t, err)
}
