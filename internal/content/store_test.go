package content_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qoratosh/travel-backend/internal/content"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "content.json")
}

func TestOpen_SeedsMissingFile(t *testing.T) {
	path := storePath(t)
	seed := content.Document{"ru": json.RawMessage(`{"hero":"Привет"}`)}

	s, err := content.Open(path, seed)
	require.NoError(t, err)

	assert.JSONEq(t, `{"hero":"Привет"}`, string(s.Get()["ru"]))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "hero")
}

func TestOpen_NilSeedYieldsEmptyDocument(t *testing.T) {
	s, err := content.Open(storePath(t), nil)
	require.NoError(t, err)
	assert.NotNil(t, s.Get())
	assert.Empty(t, s.Get())
}

func TestOpen_LoadsExistingFile(t *testing.T) {
	path := storePath(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"uz":{"hero":"Salom"}}`), 0o644))

	s, err := content.Open(path, content.Document{"ru": json.RawMessage(`{}`)})
	require.NoError(t, err)

	// An existing file wins over the seed.
	assert.NotContains(t, s.Get(), "ru")
	assert.JSONEq(t, `{"hero":"Salom"}`, string(s.Get()["uz"]))
}

func TestOpen_CorruptFile(t *testing.T) {
	path := storePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := content.Open(path, nil)
	assert.Error(t, err)
}

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "content.json")
	_, err := content.Open(path, nil)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestReplace_PersistsAcrossReopen(t *testing.T) {
	path := storePath(t)
	s, err := content.Open(path, nil)
	require.NoError(t, err)

	next := content.Document{"en": json.RawMessage(`{"hero":"Hello"}`)}
	require.NoError(t, s.Replace(next))
	assert.JSONEq(t, `{"hero":"Hello"}`, string(s.Get()["en"]))

	reopened, err := content.Open(path, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hero":"Hello"}`, string(reopened.Get()["en"]))
}

func TestReplace_NilBecomesEmpty(t *testing.T) {
	s, err := content.Open(storePath(t), content.Document{"ru": json.RawMessage(`{}`)})
	require.NoError(t, err)

	require.NoError(t, s.Replace(nil))
	assert.NotNil(t, s.Get())
	assert.Empty(t, s.Get())
}

func TestReplace_NoTempFileLeftBehind(t *testing.T) {
	path := storePath(t)
	s, err := content.Open(path, nil)
	require.NoError(t, err)

	require.NoError(t, s.Replace(content.Document{"ru": json.RawMessage(`{}`)}))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
