package renderer

import (
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
)

type Renderer struct {
	backend     RendererBackend
	frameNumber uint64
}

func NewRenderer(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize(appName string, width, height uint32) error {
	return r.backend.Initialize(appName, width, height)
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

// DrawFrame runs draw between BeginFrame and EndFrame.
func (r *Renderer) DrawFrame(deltaTime float64, draw func(RendererBackend) error) error {
	if err := r.backend.BeginFrame(deltaTime); err != nil {
		return err
	}
	if err := draw(r.backend); err != nil {
		return errors.Join(err, r.backend.EndFrame(deltaTime))
	}
	if err := r.backend.EndFrame(deltaTime); err != nil {
		return err
	}
	r.frameNumber++
	return nil
}

func (r *Renderer) FrameNumber() uint64 { return r.frameNumber }

// SavePNG writes the last completed frame to path.
func (r *Renderer) SavePNG(path string) error {
	frame := r.backend.Frame()
	if frame == nil {
		return errors.New("no frame has been rendered")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, frame); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return f.Close()
}
