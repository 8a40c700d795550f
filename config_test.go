package sheen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "cyan", cfg.Theme["type"])

	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "magenta", cfg.Theme["keyword"])
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".sheen.yaml")
	content := `theme:
  keyword: blue
  custom: "#336699"
aliases:
  mdown: markdown
rules-dir: /opt/rules
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "blue", cfg.Theme["keyword"])
	assert.Equal(t, "#336699", cfg.Theme["custom"])
	assert.Equal(t, "markdown", cfg.Aliases["mdown"])
	assert.Equal(t, "/opt/rules", cfg.RulesDir)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".sheen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: [not a map]"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".sheen.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Theme, cfg.Theme)

	// never clobber an existing file
	assert.Error(t, WriteDefaultConfig(path))
}
