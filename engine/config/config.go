package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/panelpop/engine/core"
	"github.com/spaghettifunk/panelpop/engine/math"
)

const (
	MinDPI = 36.0
	MaxDPI = 600.0
)

var ErrInvalidConfig = errors.New("invalid configuration")

type ApplicationConfig struct {
	// The application name used as the window title.
	Name string `toml:"name"`
	// Canvas width in pixels.
	Width uint32 `toml:"width"`
	// Canvas height in pixels.
	Height   uint32        `toml:"height"`
	LogLevel core.LogLevel `toml:"log_level"`
	// Where the rendered frame is written.
	OutputPath string `toml:"output_path"`
}

type AssetsConfig struct {
	// Directory that relative asset paths are resolved against.
	Dir string `toml:"dir"`
	// Follow changes to the assets directory.
	Watch bool `toml:"watch"`
	// Font rasterization DPI.
	DPI float64 `toml:"dpi"`
	// Assets loaded into the caches before the first frame.
	Preload []string `toml:"preload"`
}

type MenuConfig struct {
	X       int      `toml:"x"`
	Y       int      `toml:"y"`
	Width   int      `toml:"width"`
	Height  int      `toml:"height"`
	Spacing int      `toml:"spacing"`
	Entries []string `toml:"entries"`
}

type TitleScreenConfig struct {
	Image    string     `toml:"image"`
	Font     string     `toml:"font"`
	FontSize uint16     `toml:"font_size"`
	Menu     MenuConfig `toml:"menu"`
}

type Config struct {
	Application ApplicationConfig `toml:"application"`
	Assets      AssetsConfig      `toml:"assets"`
	TitleScreen TitleScreenConfig `toml:"title_screen"`
}

// Default returns the title screen of panel-pop.
func Default() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:       "panel-pop",
			Width:      800,
			Height:     600,
			LogLevel:   core.LogLevelInfo,
			OutputPath: "panel-pop.png",
		},
		Assets: AssetsConfig{
			Dir:   ".",
			Watch: false,
			DPI:   72,
		},
		TitleScreen: TitleScreenConfig{
			Image:    "assets/title.png",
			Font:     "assets/fonts/square_sans_serif_7.ttf",
			FontSize: 10,
			Menu: MenuConfig{
				X:       600,
				Y:       250,
				Width:   125,
				Height:  25,
				Spacing: 19,
				Entries: []string{"1P Endless", "     VS AI", "     VS 2P", "   Options", "      EXIT"},
			},
		},
	}
}

// Load reads a TOML file on top of the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes TOML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and normalizes the DPI into [MinDPI, MaxDPI].
func (c *Config) Validate() error {
	var errs []error
	if c.Application.Width == 0 || c.Application.Height == 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d must be positive", c.Application.Width, c.Application.Height))
	}
	if c.Application.LogLevel != "" && !core.ValidLogLevel(c.Application.LogLevel) {
		errs = append(errs, fmt.Errorf("unknown log level '%s'", c.Application.LogLevel))
	}
	if c.Application.OutputPath == "" {
		errs = append(errs, errors.New("output_path must be set"))
	}
	if c.TitleScreen.Image == "" {
		errs = append(errs, errors.New("title_screen.image must be set"))
	}
	if c.TitleScreen.Font == "" {
		errs = append(errs, errors.New("title_screen.font must be set"))
	}
	for i, p := range c.Assets.Preload {
		if p == "" {
			errs = append(errs, fmt.Errorf("assets.preload[%d] is empty", i))
		}
	}
	if c.TitleScreen.FontSize == 0 {
		errs = append(errs, errors.New("title_screen.font_size must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	if c.Assets.DPI == 0 {
		c.Assets.DPI = 72
	}
	c.Assets.DPI = math.Clamp(c.Assets.DPI, MinDPI, MaxDPI)
	if c.Assets.Dir == "" {
		c.Assets.Dir = "."
	}
	return nil
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
