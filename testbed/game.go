package testbed

import (
	"errors"
	"image"
	"image/color"

	"github.com/spaghettifunk/panelpop/engine"
	"github.com/spaghettifunk/panelpop/engine/config"
	"github.com/spaghettifunk/panelpop/engine/core"
	"github.com/spaghettifunk/panelpop/engine/renderer"
	"github.com/spaghettifunk/panelpop/engine/resources"
	"github.com/spaghettifunk/panelpop/engine/resources/loaders"
)

// TitleScreen draws the panel-pop title image with its main menu.
type TitleScreen struct {
	*engine.Game
}

type titleState struct {
	background *resources.Handle[*loaders.Texture]
	font       *resources.Handle[*loaders.Font]
	shaping    *resources.Handle[*loaders.ShapingFont]
	// menu entries wider than their box; they get squeezed when drawn
	overflow []string
}

func NewTitleScreen(cfg *config.Config) *TitleScreen {
	ts := &TitleScreen{
		Game: &engine.Game{
			Config: cfg,
			State:  &titleState{},
		},
	}

	ts.FnInitialize = ts.Initialize
	ts.FnRender = ts.Render
	ts.FnShutdown = ts.Shutdown

	return ts
}

func (ts *TitleScreen) state() *titleState {
	return ts.State.(*titleState)
}

func (ts *TitleScreen) fontDetails() loaders.FontDetails {
	return loaders.FontDetails{
		Path: ts.Config.TitleScreen.Font,
		Size: ts.Config.TitleScreen.FontSize,
	}
}

func (ts *TitleScreen) Initialize() error {
	core.LogInfo("initializing title screen...")
	st := ts.state()

	bg, err := ts.SystemManager.Textures.Get(ts.Config.TitleScreen.Image)
	if err != nil {
		return err
	}
	st.background = bg

	f, err := ts.SystemManager.Fonts.Get(ts.fontDetails())
	if err != nil {
		return errors.Join(err, ts.Shutdown())
	}
	st.font = f

	sf, err := ts.SystemManager.ShapingFonts.Get(ts.Config.TitleScreen.Font)
	if err != nil {
		return errors.Join(err, ts.Shutdown())
	}
	st.shaping = sf

	px := float64(ts.Config.TitleScreen.FontSize) * ts.Config.Assets.DPI / 72
	st.overflow = MenuOverflow(sf.Value(), ts.Config.TitleScreen.Menu, px)
	for _, entry := range st.overflow {
		core.LogWarn("menu entry %q is wider than its %dpx box", entry, ts.Config.TitleScreen.Menu.Width)
	}
	return nil
}

// MenuOverflow returns the menu entries whose natural width at size pixels
// exceeds the width of an entry box.
func MenuOverflow(f *loaders.ShapingFont, menu config.MenuConfig, size float64) []string {
	var out []string
	for _, entry := range menu.Entries {
		if f.Advance(entry, size) > float64(menu.Width) {
			out = append(out, entry)
		}
	}
	return out
}

// MenuEntryRect returns the box of the i-th menu entry.
func MenuEntryRect(menu config.MenuConfig, i int) image.Rectangle {
	y := menu.Y + menu.Spacing*i
	return image.Rect(menu.X, y, menu.X+menu.Width, y+menu.Height)
}

func (ts *TitleScreen) Render(backend renderer.RendererBackend, deltaTime float64) error {
	// asking again goes through the cache, so nothing is read twice
	bg, err := ts.SystemManager.Textures.Get(ts.Config.TitleScreen.Image)
	if err != nil {
		return err
	}
	defer bg.Release()
	f, err := ts.SystemManager.Fonts.Get(ts.fontDetails())
	if err != nil {
		return err
	}
	defer f.Release()

	backend.Clear(color.Black)
	if err := backend.DrawTexture(bg.Value(), nil); err != nil {
		return err
	}

	menu := ts.Config.TitleScreen.Menu
	for i, entry := range menu.Entries {
		if err := backend.DrawText(f.Value().Face, entry, MenuEntryRect(menu, i), color.Black); err != nil {
			return err
		}
	}
	return nil
}

func (ts *TitleScreen) Shutdown() error {
	st := ts.state()
	var errs []error
	if st.background != nil {
		errs = append(errs, st.background.Release())
		st.background = nil
	}
	if st.font != nil {
		errs = append(errs, st.font.Release())
		st.font = nil
	}
	if st.shaping != nil {
		errs = append(errs, st.shaping.Release())
		st.shaping = nil
	}
	return errors.Join(errs...)
}
