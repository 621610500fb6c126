package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/spaghettifunk/panelpop/engine/core"
	"github.com/spaghettifunk/panelpop/engine/resources/loaders"
)

var (
	ErrNotInitialized = errors.New("software backend not initialized")
	ErrNoFrame        = errors.New("draw called outside of a frame")
)

// SoftwareBackend renders into an in-memory RGBA image.
type SoftwareBackend struct {
	name    string
	width   uint32
	height  uint32
	target  *image.RGBA
	frame   *image.RGBA
	inFrame bool
}

func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{}
}

func (sb *SoftwareBackend) Initialize(appName string, appWidth, appHeight uint32) error {
	if appWidth == 0 || appHeight == 0 {
		return fmt.Errorf("invalid canvas size %dx%d", appWidth, appHeight)
	}
	sb.name = appName
	sb.width = appWidth
	sb.height = appHeight
	sb.target = image.NewRGBA(image.Rect(0, 0, int(appWidth), int(appHeight)))
	core.LogDebug("software renderer initialized for '%s' (%dx%d)", appName, appWidth, appHeight)
	return nil
}

func (sb *SoftwareBackend) Shutdown() error {
	sb.target = nil
	sb.frame = nil
	sb.inFrame = false
	return nil
}

func (sb *SoftwareBackend) Resized(width, height uint32) error {
	return sb.Initialize(sb.name, width, height)
}

func (sb *SoftwareBackend) BeginFrame(deltaTime float64) error {
	if sb.target == nil {
		return ErrNotInitialized
	}
	sb.inFrame = true
	return nil
}

func (sb *SoftwareBackend) EndFrame(deltaTime float64) error {
	if !sb.inFrame {
		return ErrNoFrame
	}
	frame := image.NewRGBA(sb.target.Bounds())
	copy(frame.Pix, sb.target.Pix)
	sb.frame = frame
	sb.inFrame = false
	return nil
}

func (sb *SoftwareBackend) Clear(c color.Color) {
	if sb.target == nil {
		return
	}
	draw.Draw(sb.target, sb.target.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (sb *SoftwareBackend) DrawTexture(texture *loaders.Texture, dst *image.Rectangle) error {
	if !sb.inFrame {
		return ErrNoFrame
	}
	if texture == nil || texture.Image == nil {
		return errors.New("texture has no pixels")
	}
	rect := sb.target.Bounds()
	if dst != nil {
		rect = *dst
	}
	draw.CatmullRom.Scale(sb.target, rect, texture.Image, texture.Image.Bounds(), draw.Over, nil)
	return nil
}

func (sb *SoftwareBackend) DrawText(face font.Face, text string, dst image.Rectangle, c color.Color) error {
	if !sb.inFrame {
		return ErrNoFrame
	}
	if face == nil {
		return errors.New("font face is nil")
	}

	// the label is rasterized at its native size, then stretched over the box
	metrics := face.Metrics()
	width := font.MeasureString(face, text).Ceil()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	if width <= 0 || height <= 0 || dst.Empty() {
		return nil
	}
	label := image.NewRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  label,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{Y: metrics.Ascent},
	}
	d.DrawString(text)

	draw.CatmullRom.Scale(sb.target, dst, label, label.Bounds(), draw.Over, nil)
	return nil
}

func (sb *SoftwareBackend) Frame() image.Image {
	if sb.frame == nil {
		return nil
	}
	return sb.frame
}
