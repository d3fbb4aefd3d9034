package config

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "/home/user/.config/rush/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFullFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	contents := strings.Join([]string{
		`prompt: "rush> "`,
		`prompt_color: always`,
		`log_path: /tmp/rush-events.log`,
	}, "\n")
	require.NoError(t, afero.WriteFile(fsys, "/etc/rush.yaml", []byte(contents), 0644))

	cfg, err := Load(fsys, "/etc/rush.yaml")
	require.NoError(t, err)
	assert.Equal(t, "rush> ", cfg.Prompt)
	assert.Equal(t, PromptColorAlways, cfg.PromptColor)
	assert.Equal(t, "/tmp/rush-events.log", cfg.LogPath)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/etc/rush.yaml", []byte(`prompt: "% "`), 0644))

	cfg, err := Load(fsys, "/etc/rush.yaml")
	require.NoError(t, err)
	assert.Equal(t, "% ", cfg.Prompt)
	assert.Equal(t, PromptColorNever, cfg.PromptColor)
	assert.Empty(t, cfg.LogPath)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/etc/rush.yaml", []byte(`promt: "% "`), 0644))

	_, err := Load(fsys, "/etc/rush.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsBadPromptColor(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/etc/rush.yaml", []byte(`prompt_color: sometimes`), 0644))

	_, err := Load(fsys, "/etc/rush.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt_color")
}

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestRenderPrompt(t *testing.T) {
	plain := Default()
	assert.Equal(t, "$ ", plain.RenderPrompt())

	colored := &Config{Prompt: "$ ", PromptColor: PromptColorAlways}
	rendered := colored.RenderPrompt()
	assert.Contains(t, rendered, "$ ")
	assert.Contains(t, rendered, "\x1b[")
}
