// Package icon draws the small status image shown in the notification area.
package icon

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/HerbHall/pingtray/internal/severity"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultSize     = 64
	DefaultFontSize = 40.0

	// minFontSize bounds how far long labels are shrunk to fit.
	minFontSize = 6.0
	// stroke is the pixel radius used to embolden the glyphs.
	stroke = 1
)

// Options configures a Renderer. Zero values select the defaults.
type Options struct {
	Size     int     `mapstructure:"size"`
	FontSize float64 `mapstructure:"font_size"`
	FontPath string  `mapstructure:"font_path"`
}

// Renderer produces square, transparent icons with centered text.
type Renderer struct {
	size     int
	fontSize float64
	font     *opentype.Font // nil selects basicfont
	source   string
	logger   *zap.Logger
}

// NewRenderer resolves a font once and returns a Renderer. A missing or
// unparsable system font is not an error: the built-in Go font is used
// instead, and basicfont if even that fails.
func NewRenderer(opts Options, logger *zap.Logger) *Renderer {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}

	r := &Renderer{size: opts.Size, fontSize: opts.FontSize, logger: logger}

	paths := systemFontPaths
	if opts.FontPath != "" {
		paths = []string{opts.FontPath}
	}
	for _, p := range paths {
		f, err := loadFont(p)
		if err != nil {
			logger.Debug("font unavailable", zap.String("path", p), zap.Error(err))
			continue
		}
		r.font, r.source = f, p
		return r
	}

	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		logger.Debug("built-in font unavailable, using basicfont", zap.Error(err))
		r.source = "basicfont"
		return r
	}
	logger.Debug("system font unavailable, using built-in font")
	r.font, r.source = f, "builtin"
	return r
}

// FontSource reports where the font came from: a file path, "builtin" or
// "basicfont".
func (r *Renderer) FontSource() string { return r.source }

// Size returns the icon edge length in pixels.
func (r *Renderer) Size() int { return r.size }

// Render draws text centered in the tier color on a transparent image.
// The image is always Size x Size regardless of the text length.
func (r *Renderer) Render(text string, tier severity.Tier) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.size, r.size))
	if text == "" {
		return img
	}

	face, closeFace := r.faceFor(text)
	defer closeFace()

	width := font.MeasureString(face, text)
	m := face.Metrics()
	height := m.Ascent + m.Descent
	edge := fixed.I(r.size)

	origin := fixed.Point26_6{
		X: (edge - width) / 2,
		Y: (edge-height)/2 + m.Ascent,
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(tier.Color()),
		Face: face,
	}
	for dy := -stroke; dy <= stroke; dy++ {
		for dx := -stroke; dx <= stroke; dx++ {
			d.Dot = fixed.Point26_6{X: origin.X + fixed.I(dx), Y: origin.Y + fixed.I(dy)}
			d.DrawString(text)
		}
	}
	return img
}

// RenderPNG draws the icon and encodes it as PNG.
func (r *Renderer) RenderPNG(text string, tier severity.Tier) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Render(text, tier)); err != nil {
		return nil, fmt.Errorf("encode icon: %w", err)
	}
	return buf.Bytes(), nil
}

// faceFor returns a face sized so text fits inside the icon, plus a func
// releasing it.
func (r *Renderer) faceFor(text string) (font.Face, func()) {
	if r.font == nil {
		return basicfont.Face7x13, func() {}
	}

	limit := fixed.I(r.size - 2*stroke)
	size := r.fontSize
	for {
		face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			r.logger.Debug("font face unavailable, using basicfont", zap.Error(err))
			return basicfont.Face7x13, func() {}
		}

		width := font.MeasureString(face, text)
		if width <= limit || size <= minFontSize {
			return face, func() { _ = face.Close() }
		}
		_ = face.Close()

		next := size * float64(limit) / float64(width)
		if next >= size {
			next = size - 1
		}
		size = max(next, minFontSize)
	}
}

func loadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}
