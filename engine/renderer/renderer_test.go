package renderer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"

	"github.com/spaghettifunk/panelpop/engine/resources/loaders"
)

func solidTexture(w, h int, c color.Color) *loaders.Texture {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return &loaders.Texture{Width: w, Height: h, Format: "png", Image: img}
}

// assertNear compares colors allowing for interpolation rounding.
func assertNear(t *testing.T, want, got color.Color) {
	t.Helper()
	wr, wg, wb, wa := want.RGBA()
	gr, gg, gb, ga := got.RGBA()
	assert.InDelta(t, wr>>8, gr>>8, 2)
	assert.InDelta(t, wg>>8, gg>>8, 2)
	assert.InDelta(t, wb>>8, gb>>8, 2)
	assert.InDelta(t, wa>>8, ga>>8, 2)
}

func TestSoftwareBackendDrawTexture(t *testing.T) {
	t.Parallel()

	sb := NewSoftwareBackend()
	require.NoError(t, sb.Initialize("test", 20, 10))
	r := NewRenderer(sb)

	red := color.RGBA{R: 255, A: 255}
	err := r.DrawFrame(0, func(b RendererBackend) error {
		b.Clear(color.White)
		return b.DrawTexture(solidTexture(2, 2, red), nil)
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, r.FrameNumber())

	frame := sb.Frame()
	require.NotNil(t, frame)
	assert.Equal(t, image.Rect(0, 0, 20, 10), frame.Bounds())
	assertNear(t, red, frame.At(10, 5))
}

func TestSoftwareBackendDrawTextureIntoRect(t *testing.T) {
	t.Parallel()

	sb := NewSoftwareBackend()
	require.NoError(t, sb.Initialize("test", 20, 20))
	r := NewRenderer(sb)

	blue := color.RGBA{B: 255, A: 255}
	dst := image.Rect(10, 10, 20, 20)
	require.NoError(t, r.DrawFrame(0, func(b RendererBackend) error {
		b.Clear(color.Black)
		return b.DrawTexture(solidTexture(4, 4, blue), &dst)
	}))

	frame := sb.Frame()
	assertNear(t, color.Black, frame.At(2, 2))
	assertNear(t, blue, frame.At(15, 15))
}

func TestSoftwareBackendDrawText(t *testing.T) {
	t.Parallel()

	sb := NewSoftwareBackend()
	require.NoError(t, sb.Initialize("test", 100, 30))
	r := NewRenderer(sb)

	box := image.Rect(0, 0, 100, 30)
	require.NoError(t, r.DrawFrame(0, func(b RendererBackend) error {
		b.Clear(color.White)
		return b.DrawText(basicfont.Face7x13, "EXIT", box, color.Black)
	}))

	frame := sb.Frame().(*image.RGBA)
	dark := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 100; x++ {
			if frame.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 0, "text should leave dark pixels")

	// nothing is drawn past the box
	outside := image.Rect(0, 0, 100, 30)
	require.NoError(t, r.DrawFrame(0, func(b RendererBackend) error {
		b.Clear(color.White)
		return b.DrawText(basicfont.Face7x13, "EXIT", image.Rect(0, 0, 10, 5), color.Black)
	}))
	frame = sb.Frame().(*image.RGBA)
	for y := 5; y < outside.Max.Y; y++ {
		for x := 10; x < outside.Max.X; x++ {
			require.Equal(t, uint8(255), frame.RGBAAt(x, y).R)
		}
	}
}

func TestSoftwareBackendDrawTextFillsBox(t *testing.T) {
	t.Parallel()

	sb := NewSoftwareBackend()
	require.NoError(t, sb.Initialize("test", 200, 60))
	r := NewRenderer(sb)

	box := image.Rect(50, 10, 150, 40)
	require.NoError(t, r.DrawFrame(0, func(b RendererBackend) error {
		b.Clear(color.White)
		return b.DrawText(basicfont.Face7x13, "EXIT", box, color.Black)
	}))

	frame := sb.Frame().(*image.RGBA)
	var left, right, outside int
	for y := 0; y < 60; y++ {
		for x := 0; x < 200; x++ {
			if frame.RGBAAt(x, y).R >= 128 {
				continue
			}
			switch {
			case !image.Pt(x, y).In(box):
				outside++
			case x < box.Min.X+box.Dx()/4:
				left++
			case x >= box.Max.X-box.Dx()/4:
				right++
			}
		}
	}
	// the 28px wide label reaches both ends of the 100px box
	assert.Greater(t, left, 0)
	assert.Greater(t, right, 0)
	assert.Zero(t, outside)

	// empty text draws nothing
	require.NoError(t, r.DrawFrame(0, func(b RendererBackend) error {
		b.Clear(color.White)
		return b.DrawText(basicfont.Face7x13, "", box, color.Black)
	}))
	assert.Equal(t, uint8(255), sb.Frame().(*image.RGBA).RGBAAt(100, 25).R)
}

func TestSoftwareBackendErrors(t *testing.T) {
	t.Parallel()

	sb := NewSoftwareBackend()
	assert.ErrorIs(t, sb.BeginFrame(0), ErrNotInitialized)
	assert.Error(t, sb.Initialize("test", 0, 10))

	require.NoError(t, sb.Initialize("test", 4, 4))
	assert.ErrorIs(t, sb.DrawTexture(solidTexture(1, 1, color.White), nil), ErrNoFrame)
	assert.ErrorIs(t, sb.EndFrame(0), ErrNoFrame)
	assert.Nil(t, sb.Frame())

	r := NewRenderer(sb)
	err := r.DrawFrame(0, func(b RendererBackend) error {
		return b.DrawTexture(&loaders.Texture{}, nil)
	})
	assert.ErrorContains(t, err, "no pixels")
	assert.Zero(t, r.FrameNumber())

	require.NoError(t, sb.Resized(8, 8))
	require.NoError(t, sb.Shutdown())
	assert.ErrorIs(t, sb.BeginFrame(0), ErrNotInitialized)
}

func TestRendererSavePNG(t *testing.T) {
	t.Parallel()

	sb := NewSoftwareBackend()
	require.NoError(t, sb.Initialize("test", 6, 3))
	r := NewRenderer(sb)

	path := filepath.Join(t.TempDir(), "out", "frame.png")
	assert.Error(t, r.SavePNG(path))

	require.NoError(t, r.DrawFrame(0, func(b RendererBackend) error {
		b.Clear(color.White)
		return nil
	}))
	require.NoError(t, r.SavePNG(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 3), img.Bounds())
}
