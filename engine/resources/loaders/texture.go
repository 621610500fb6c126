package loaders

import (
	"fmt"
	"image"
	"os"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/panelpop/engine/resources"
)

// Texture is a decoded image ready to be drawn.
type Texture struct {
	FullPath string
	Format   string
	Width    int
	Height   int
	// DataSize is the size of the source file in bytes.
	DataSize uint64
	Image    image.Image
}

// TextureLoader decodes image files (png, jpeg, gif, bmp, tiff, webp) into textures.
type TextureLoader struct {
	Root string
}

var (
	_ resources.Loader[string, *Texture] = (*TextureLoader)(nil)
	_ resources.Unloader[*Texture]       = (*TextureLoader)(nil)
)

func (tl *TextureLoader) Load(path string) (*Texture, error) {
	fullPath := resolvePath(tl.Root, path)
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("texture path '%s' is a directory", fullPath)
	}

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture '%s': %w", fullPath, err)
	}
	bounds := img.Bounds()
	return &Texture{
		FullPath: fullPath,
		Format:   format,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		DataSize: uint64(info.Size()),
		Image:    img,
	}, nil
}

// Unload drops the decoded pixels.
func (tl *TextureLoader) Unload(t *Texture) error {
	if t == nil {
		return nil
	}
	t.Image = nil
	t.DataSize = 0
	return nil
}
