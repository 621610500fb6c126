package loaders

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/panelpop/engine/resources"
)

type BitmapFontGlyph struct {
	Codepoint rune
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

type BitmapFontKerning struct {
	Codepoint0 rune
	Codepoint1 rune
	Amount     int16
}

type BitmapFontPage struct {
	ID   int8
	File string
}

// BitmapFont is an AngelCode BMFont descriptor together with its page sheets.
type BitmapFont struct {
	FullPath   string
	Face       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasSizeX int32
	AtlasSizeY int32
	Glyphs     []BitmapFontGlyph
	Kernings   []BitmapFontKerning
	Pages      []BitmapFontPage
	// Font is the parsed font, usable for drawing text.
	Font *bmfont.BitmapFont
}

// BitmapFontLoader loads .fnt bitmap fonts in the AngelCode text format.
type BitmapFontLoader struct {
	Root string
}

var (
	_ resources.Loader[string, *BitmapFont] = (*BitmapFontLoader)(nil)
	_ resources.Unloader[*BitmapFont]       = (*BitmapFontLoader)(nil)
)

func (fl *BitmapFontLoader) Load(path string) (*BitmapFont, error) {
	fullPath := resolvePath(fl.Root, path)
	if !strings.EqualFold(filepath.Ext(fullPath), ".fnt") {
		return nil, fmt.Errorf("unable to find bitmap font of supported type called '%s'", path)
	}

	font, err := bmfont.Load(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to import bitmap font '%s': %w", fullPath, err)
	}

	desc := font.Descriptor
	out := &BitmapFont{
		FullPath:   fullPath,
		Face:       desc.Info.Face,
		Size:       uint32(desc.Info.Size),
		LineHeight: int32(desc.Common.LineHeight),
		Baseline:   int32(desc.Common.Base),
		AtlasSizeX: int32(desc.Common.ScaleW),
		AtlasSizeY: int32(desc.Common.ScaleH),
		Glyphs:     make([]BitmapFontGlyph, 0, len(desc.Chars)),
		Kernings:   make([]BitmapFontKerning, 0, len(desc.Kerning)),
		Pages:      make([]BitmapFontPage, 0, len(desc.Pages)),
		Font:       font,
	}

	for _, p := range desc.Pages {
		out.Pages = append(out.Pages, BitmapFontPage{
			ID:   int8(p.ID),
			File: p.File,
		})
	}
	for _, g := range desc.Chars {
		out.Glyphs = append(out.Glyphs, BitmapFontGlyph{
			Codepoint: rune(g.ID),
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		})
	}
	for p, k := range desc.Kerning {
		out.Kernings = append(out.Kernings, BitmapFontKerning{
			Codepoint0: rune(p.First),
			Codepoint1: rune(p.Second),
			Amount:     int16(k.Amount),
		})
	}

	// descriptor tables are maps, keep the output stable
	sort.Slice(out.Pages, func(i, j int) bool { return out.Pages[i].ID < out.Pages[j].ID })
	sort.Slice(out.Glyphs, func(i, j int) bool { return out.Glyphs[i].Codepoint < out.Glyphs[j].Codepoint })
	sort.Slice(out.Kernings, func(i, j int) bool {
		if out.Kernings[i].Codepoint0 != out.Kernings[j].Codepoint0 {
			return out.Kernings[i].Codepoint0 < out.Kernings[j].Codepoint0
		}
		return out.Kernings[i].Codepoint1 < out.Kernings[j].Codepoint1
	})

	return out, nil
}

// Glyph returns the glyph for codepoint, if the font has one.
func (bf *BitmapFont) Glyph(codepoint rune) (BitmapFontGlyph, bool) {
	i := sort.Search(len(bf.Glyphs), func(i int) bool { return bf.Glyphs[i].Codepoint >= codepoint })
	if i < len(bf.Glyphs) && bf.Glyphs[i].Codepoint == codepoint {
		return bf.Glyphs[i], true
	}
	return BitmapFontGlyph{}, false
}

func (fl *BitmapFontLoader) Unload(bf *BitmapFont) error {
	if bf == nil {
		return nil
	}
	bf.Glyphs = nil
	bf.Kernings = nil
	bf.Pages = nil
	bf.Font = nil
	return nil
}
