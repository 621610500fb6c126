package loaders

import (
	"bytes"
	"fmt"

	"github.com/go-text/typesetting/font"

	"github.com/spaghettifunk/panelpop/engine/resources"
)

// ShapingFont is a parsed OpenType font for the go-text shaping pipeline.
// The Font is read-only and safe to share; faces are created per use.
type ShapingFont struct {
	FullPath string
	Font     *font.Font
}

// ShapingFontLoader parses fonts with go-text/typesetting.
type ShapingFontLoader struct {
	Root string
}

var _ resources.Loader[string, *ShapingFont] = (*ShapingFontLoader)(nil)

func (sl *ShapingFontLoader) Load(path string) (*ShapingFont, error) {
	data, fullPath, err := readFile(sl.Root, path)
	if err != nil {
		return nil, err
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse font '%s': %w", fullPath, err)
	}
	return &ShapingFont{
		FullPath: fullPath,
		Font:     face.Font,
	}, nil
}

// Advance returns the unshaped horizontal advance of text at size, in pixels.
// Runes missing from the font contribute nothing.
func (sf *ShapingFont) Advance(text string, size float64) float64 {
	upem := sf.Font.Upem()
	if upem == 0 {
		return 0
	}
	// font.Face is not safe for concurrent use, so each call gets its own.
	face := font.NewFace(sf.Font)
	var units float64
	for _, r := range text {
		gid, ok := face.NominalGlyph(r)
		if !ok {
			continue
		}
		units += float64(face.HorizontalAdvance(gid))
	}
	return units * size / float64(upem)
}
