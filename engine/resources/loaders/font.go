package loaders

import (
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/spaghettifunk/panelpop/engine/resources"
)

// DefaultDPI matches the 72 DPI convention where one point is one pixel.
const DefaultDPI = 72

// FontDetails is the information needed to load a font.
type FontDetails struct {
	Path string
	Size uint16
}

func (fd FontDetails) String() string {
	return fd.Path + "@" + strconv.Itoa(int(fd.Size))
}

// Font is a scalable font rasterized at a fixed point size.
type Font struct {
	Details  FontDetails
	FullPath string
	Family   string
	Face     font.Face
	Metrics  font.Metrics
}

// FontLoader parses TrueType/OpenType fonts (collections use their first font)
// and builds a face for the requested size.
type FontLoader struct {
	Root string
	// DPI used to build faces. Zero means DefaultDPI.
	DPI float64
}

var (
	_ resources.Loader[FontDetails, *Font] = (*FontLoader)(nil)
	_ resources.Unloader[*Font]            = (*FontLoader)(nil)
)

func (fl *FontLoader) Load(details FontDetails) (*Font, error) {
	if details.Size == 0 {
		return nil, fmt.Errorf("invalid font size 0 for '%s'", details.Path)
	}

	fontBytes, fullPath, err := readFile(fl.Root, details.Path)
	if err != nil {
		return nil, err
	}

	f, err := parseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font '%s': %w", fullPath, err)
	}

	dpi := fl.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(details.Size),
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face for '%s': %w", details, err)
	}

	family, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil && !errors.Is(err, sfnt.ErrNotFound) {
		return nil, err
	}

	return &Font{
		Details:  details,
		FullPath: fullPath,
		Family:   family,
		Face:     face,
		Metrics:  face.Metrics(),
	}, nil
}

// Unload closes the font face.
func (fl *FontLoader) Unload(f *Font) error {
	if f == nil || f.Face == nil {
		return nil
	}
	err := f.Face.Close()
	f.Face = nil
	return err
}

func parseFont(data []byte) (*sfnt.Font, error) {
	f, err := opentype.Parse(data)
	if err == nil {
		return f, nil
	}
	collection, cerr := opentype.ParseCollection(data)
	if cerr != nil {
		return nil, err
	}
	if collection.NumFonts() == 0 {
		return nil, errors.New("font collection is empty")
	}
	return collection.Font(0)
}
