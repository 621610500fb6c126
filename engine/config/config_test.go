package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/panelpop/engine/core"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "panel-pop", cfg.Application.Name)
	assert.EqualValues(t, 800, cfg.Application.Width)
	assert.EqualValues(t, 600, cfg.Application.Height)
	assert.Equal(t, "assets/title.png", cfg.TitleScreen.Image)
	assert.EqualValues(t, 10, cfg.TitleScreen.FontSize)
	assert.Len(t, cfg.TitleScreen.Menu.Entries, 5)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[application]
name = "panel-pop dev"
log_level = "debug"

[assets]
dir = "/srv/game"
dpi = 2000.0

[title_screen]
font_size = 12

[title_screen.menu]
entries = ["Start", "Quit"]
`))
	require.NoError(t, err)

	assert.Equal(t, "panel-pop dev", cfg.Application.Name)
	assert.Equal(t, core.LogLevelDebug, cfg.Application.LogLevel)
	// untouched keys keep their defaults
	assert.EqualValues(t, 800, cfg.Application.Width)
	assert.Equal(t, "assets/title.png", cfg.TitleScreen.Image)
	assert.Equal(t, 600, cfg.TitleScreen.Menu.X)

	assert.Equal(t, "/srv/game", cfg.Assets.Dir)
	assert.Equal(t, MaxDPI, cfg.Assets.DPI)
	assert.EqualValues(t, 12, cfg.TitleScreen.FontSize)
	assert.Equal(t, []string{"Start", "Quit"}, cfg.TitleScreen.Menu.Entries)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`
[application]
fullscreen = true
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "fullscreen")
}

func TestParseRejectsInvalidValues(t *testing.T) {
	_, err := Parse([]byte(`
[application]
width = 0
log_level = "chatty"

[title_screen]
font_size = 0
`))
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "canvas size")
	assert.Contains(t, err.Error(), "chatty")
	assert.Contains(t, err.Error(), "font_size")
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`[application`))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.TitleScreen.FontSize = 14
	data, err := cfg.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "panelpop.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParsePreload(t *testing.T) {
	cfg, err := Parse([]byte(`
[assets]
preload = ["assets/title.png", "assets/fonts/square_sans_serif_7.ttf"]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"assets/title.png", "assets/fonts/square_sans_serif_7.ttf"}, cfg.Assets.Preload)
	assert.Empty(t, Default().Assets.Preload)

	_, err = Parse([]byte(`
[assets]
preload = ["assets/title.png", ""]
`))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "assets.preload[1]")
}
