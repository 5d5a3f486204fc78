package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REPRO_TEST_KEY=base\nREPRO_TEST_ONLY_BASE=1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.ci"), []byte("REPRO_TEST_KEY=overlay\n"), 0o600))

	t.Setenv("APP_ENV", "ci")
	t.Setenv("REPRO_TEST_KEY", "")
	t.Setenv("REPRO_TEST_ONLY_BASE", "")
	os.Unsetenv("REPRO_TEST_KEY")
	os.Unsetenv("REPRO_TEST_ONLY_BASE")

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
	assert.Equal(t, "overlay", os.Getenv("REPRO_TEST_KEY"))
	assert.Equal(t, "1", os.Getenv("REPRO_TEST_ONLY_BASE"))
}

func TestLoad_MissingFiles(t *testing.T) {
	t.Setenv("APP_ENV", "")
	os.Unsetenv("APP_ENV")

	loaded, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.Equal(t, DefaultAppEnv, AppEnv())
}

func TestLoad_KeepsExistingVariables(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REPRO_TEST_SET=file\n"), 0o600))
	t.Setenv("APP_ENV", "none")
	t.Setenv("REPRO_TEST_SET", "shell")

	_, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "shell", os.Getenv("REPRO_TEST_SET"))
}
