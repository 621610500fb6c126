package renderer

import (
	"image"
	"image/color"

	"golang.org/x/image/font"

	"github.com/spaghettifunk/panelpop/engine/resources/loaders"
)

// RendererBackend draws cached resources onto a frame.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	Clear(c color.Color)
	// DrawTexture scales the texture into dst. A nil dst covers the whole frame.
	DrawTexture(texture *loaders.Texture, dst *image.Rectangle) error
	// DrawText renders text stretched to fill dst.
	DrawText(face font.Face, text string, dst image.Rectangle, c color.Color) error
	// Frame returns the last completed frame.
	Frame() image.Image
}
