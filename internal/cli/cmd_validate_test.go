package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/foliosync/internal/errors"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func useSource(t *testing.T, path string) {
	t.Helper()
	viper.Set("source", path)
	t.Cleanup(func() { viper.Set("source", "") })
}

func TestValidateCommandAcceptsWellFormedSource(t *testing.T) {
	path := writeSource(t, `[
		{"slug": "gh-a", "name": "A", "repoUrl": "https://github.com/u/a"},
		{"slug": "static-site", "name": "Site"}
	]`)
	useSource(t, path)

	cmd := newValidateCmd()
	require.NoError(t, cmd.RunE(cmd, nil))
}

func TestValidateCommandRejectsDuplicateSlugs(t *testing.T) {
	path := writeSource(t, `[
		{"slug": "gh-a", "name": "A"},
		{"slug": "gh-a", "name": "Also A"}
	]`)
	useSource(t, path)

	cmd := newValidateCmd()
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)

	se := errors.AsSyncError(err)
	require.NotNil(t, se)
	assert.Equal(t, errors.CodeSourceInvalid, se.Code)
	assert.Equal(t, 1, se.ExitCode())
}

func TestValidateCommandRejectsNonArraySource(t *testing.T) {
	path := writeSource(t, `{"slug": "gh-a"}`)
	useSource(t, path)

	cmd := newValidateCmd()
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)

	se := errors.AsSyncError(err)
	require.NotNil(t, se)
	assert.Equal(t, errors.CodeSourceInvalid, se.Code)
}

func TestLoadConfigFlagOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".foliosync.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("source:\n  path: from-file.json\n"), 0o644))

	prev := cfgFile
	cfgFile = cfgPath
	t.Cleanup(func() { cfgFile = prev })

	useSource(t, "from-flag.json")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-flag.json", cfg.Source.Path)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".foliosync.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("webflow:\n  schema: snake\n"), 0o644))

	prev := cfgFile
	cfgFile = cfgPath
	t.Cleanup(func() { cfgFile = prev })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "snake", string(cfg.Webflow.Schema))
	assert.Equal(t, "projects.json", cfg.Source.Path, "unset fields keep their defaults")
}
