// Package render draws snapshots of Hand environments to PNG images.
// Rendering is strictly downstream of the environment: a Renderer only
// ever sees hand.Scene values and never changes a World.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/samuelfneumann/handreach/environment/hand"
	"gonum.org/v1/gonum/spatial/r3"
)

// Default frame geometry
const (
	ViewportW float64 = 600
	ViewportH float64 = 400

	// UnitPixels is the number of pixels per world unit at a scene
	// scale of 1
	UnitPixels float64 = 20.0

	// Depth is the fraction of the lateral coordinate drawn along the
	// oblique axis
	Depth float64 = 0.5
)

// Renderer draws Scenes as 2D images using an oblique projection of
// the lateral axis: every finger is drawn in its own plane, offset
// diagonally from the fingers in front of it.
type Renderer struct {
	width, height int

	background   color.Color
	fingerColour color.Color
	jointColour  color.Color
	targetColour color.Color
	lineWidth    float64
}

// NewRenderer returns a new Renderer of frames with the given size
func NewRenderer(width, height int) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("newRenderer: illegal frame size %vx%v",
			width, height)
	}

	return &Renderer{
		width:        width,
		height:       height,
		background:   color.RGBA{R: 245, G: 245, B: 240, A: 255},
		fingerColour: color.RGBA{R: 70, G: 70, B: 90, A: 255},
		jointColour:  color.RGBA{R: 200, G: 120, B: 40, A: 255},
		targetColour: color.RGBA{R: 200, G: 40, B: 40, A: 255},
		lineWidth:    6.0,
	}, nil
}

// NewDefault returns a new Renderer of ViewportW x ViewportH frames
func NewDefault() *Renderer {
	r, err := NewRenderer(int(ViewportW), int(ViewportH))
	if err != nil {
		panic(fmt.Sprintf("newDefault: %v", err))
	}
	return r
}

// Size returns the width and height of rendered frames
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// WorldToPixelCoord converts a world point to pixel coordinates. The
// world origin is placed a third of the way across the frame and half
// way down; world y grows upward while pixel y grows downward.
func (r *Renderer) WorldToPixelCoord(p r3.Vec, scale float64) [2]float64 {
	ppu := scale * UnitPixels
	oblique := p.Z * Depth * math.Sqrt2 / 2

	x := float64(r.width)/3 + (p.X+oblique)*ppu
	y := float64(r.height)/2 - (p.Y+oblique)*ppu
	return [2]float64{x, y}
}

// Frame draws the Scene and returns the image
func (r *Renderer) Frame(s hand.Scene) image.Image {
	return r.draw(s).Image()
}

// EncodePNG draws the Scene and writes it to w as a PNG
func (r *Renderer) EncodePNG(w io.Writer, s hand.Scene) error {
	if err := r.draw(s).EncodePNG(w); err != nil {
		return fmt.Errorf("encodePNG: %w", err)
	}
	return nil
}

// SavePNG draws the Scene and saves it as a PNG file at path
func (r *Renderer) SavePNG(path string, s hand.Scene) error {
	if err := r.draw(s).SavePNG(path); err != nil {
		return fmt.Errorf("savePNG: %w", err)
	}
	return nil
}

func (r *Renderer) draw(s hand.Scene) *gg.Context {
	dc := gg.NewContext(r.width, r.height)
	dc.SetColor(r.background)
	dc.Clear()

	scale := s.Scale
	if scale <= 0 {
		scale = 1.0
	}
	radius := r.lineWidth

	// Fingers further back are drawn first so nearer ones overlap them
	for i := len(s.Fingers) - 1; i >= 0; i-- {
		points := s.Fingers[i]

		dc.SetLineWidth(r.lineWidth)
		for j := 0; j < len(points)-1; j++ {
			p1 := r.WorldToPixelCoord(points[j], scale)
			p2 := r.WorldToPixelCoord(points[j+1], scale)
			dc.DrawLine(p1[0], p1[1], p2[0], p2[1])
		}
		dc.SetColor(r.fingerColour)
		dc.Stroke()

		for _, p := range points {
			c := r.WorldToPixelCoord(p, scale)
			dc.DrawCircle(c[0], c[1], radius/2)
		}
		dc.SetColor(r.jointColour)
		dc.Fill()

		if i < len(s.Targets) {
			c := r.WorldToPixelCoord(s.Targets[i], scale)
			dc.DrawCircle(c[0], c[1], radius)
			dc.SetColor(r.targetColour)
			dc.Fill()
		}
	}

	return dc
}
