package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.cabin.build/cabin/internal/adapters/config"
	"go.cabin.build/cabin/internal/core/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o644))
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("missing config applies defaults", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		cfg, err := config.NewLoader().Load(dir)
		require.NoError(t, err)

		assert.Equal(t, dir, cfg.Root)
		assert.Equal(t, config.DefaultBaseURL, cfg.BaseURL)
		assert.Equal(t, config.DefaultDownloadPrefix, cfg.DownloadPrefix)
		assert.Equal(t, config.DefaultThreshold, cfg.Threshold)
		assert.Empty(t, cfg.KeyIDs)
		assert.False(t, cfg.DockerEnabled)
		assert.False(t, cfg.EnvEnabled)
	})

	t.Run("reads full configuration", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeConfig(t, dir, `
version: "1"
index:
  baseUrl: https://mirror.test
  downloadPrefix: https://mirror.test/package/
  keys:
    - key1
    - key2
  threshold: 2
sandbox:
  docker:
    enabled: true
    image: haskell:9.6
  env:
    enabled: true
    shell: /bin/env-shell
`)

		cfg, err := config.NewLoader().Load(dir)
		require.NoError(t, err)

		assert.Equal(t, dir, cfg.Root)
		assert.Equal(t, "https://mirror.test", cfg.BaseURL)
		assert.Equal(t, "https://mirror.test/package/", cfg.DownloadPrefix)
		assert.Equal(t, []string{"key1", "key2"}, cfg.KeyIDs)
		assert.Equal(t, 2, cfg.Threshold)
		assert.True(t, cfg.DockerEnabled)
		assert.Equal(t, "haskell:9.6", cfg.DockerImage)
		assert.True(t, cfg.EnvEnabled)
		assert.Equal(t, "/bin/env-shell", cfg.EnvShell)
	})

	t.Run("partial configuration keeps defaults", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeConfig(t, dir, `
index:
  keys: [key1]
`)

		cfg, err := config.NewLoader().Load(dir)
		require.NoError(t, err)

		assert.Equal(t, config.DefaultBaseURL, cfg.BaseURL)
		assert.Equal(t, config.DefaultThreshold, cfg.Threshold)
		assert.Equal(t, []string{"key1"}, cfg.KeyIDs)
	})

	t.Run("discovers config in a parent directory", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeConfig(t, root, "index:\n  threshold: 5\n")

		nested := filepath.Join(root, "src", "deep")
		require.NoError(t, os.MkdirAll(nested, 0o750))

		cfg, err := config.NewLoader().Load(nested)
		require.NoError(t, err)

		assert.Equal(t, root, cfg.Root)
		assert.Equal(t, 5, cfg.Threshold)
	})

	t.Run("configured root resolves relative to the config file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeConfig(t, dir, "root: workspace\n")

		cfg, err := config.NewLoader().Load(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "workspace"), cfg.Root)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeConfig(t, dir, "index: [not: a mapping\n")

		_, err := config.NewLoader().Load(dir)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrConfigParseFailed)
	})
}
