package icon

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/HerbHall/pingtray/internal/severity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newBuiltinRenderer forces the built-in font so results do not depend on
// which system fonts are installed.
func newBuiltinRenderer(t *testing.T) *Renderer {
	t.Helper()
	r := NewRenderer(Options{FontPath: "/nonexistent/font.ttf"}, zaptest.NewLogger(t))
	require.Equal(t, "builtin", r.FontSource())
	return r
}

func hasColor(img *image.RGBA, want severity.Tier) bool {
	c := want.Color()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				return true
			}
		}
	}
	return false
}

func TestNewRenderer_Defaults(t *testing.T) {
	r := newBuiltinRenderer(t)
	assert.Equal(t, DefaultSize, r.Size())
	assert.Equal(t, DefaultFontSize, r.fontSize)
}

func TestRender_AlwaysFixedSize(t *testing.T) {
	r := newBuiltinRenderer(t)
	labels := []string{"", "4", "42", "250", "TO", "ERR", "N/A", "123456789012"}
	tiers := []severity.Tier{severity.Unknown, severity.Good, severity.Warning, severity.Bad}

	for _, label := range labels {
		for _, tier := range tiers {
			img := r.Render(label, tier)
			b := img.Bounds()
			if b.Dx() != 64 || b.Dy() != 64 {
				t.Errorf("Render(%q, %s) size = %dx%d, want 64x64", label, tier, b.Dx(), b.Dy())
			}
		}
	}
}

func TestRender_TierColors(t *testing.T) {
	r := newBuiltinRenderer(t)
	tests := []struct {
		text string
		tier severity.Tier
	}{
		{"42", severity.Good},
		{"95", severity.Warning},
		{"250", severity.Bad},
		{"TO", severity.Unknown},
		{"ERR", severity.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			img := r.Render(tt.text, tt.tier)
			assert.True(t, hasColor(img, tt.tier), "no %s pixel in icon", tt.tier)
		})
	}
}

func TestRender_TransparentBackground(t *testing.T) {
	r := newBuiltinRenderer(t)
	img := r.Render("42", severity.Good)

	for _, p := range []image.Point{{0, 0}, {63, 0}, {0, 63}, {63, 63}} {
		assert.Zero(t, img.RGBAAt(p.X, p.Y).A, "corner %v not transparent", p)
	}
}

func TestRender_Centered(t *testing.T) {
	r := newBuiltinRenderer(t)
	img := r.Render("42", severity.Good)

	minX, maxX := 64, -1
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if img.RGBAAt(x, y).A == 0 {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
		}
	}
	require.GreaterOrEqual(t, maxX, minX, "nothing drawn")

	left, right := minX, 63-maxX
	assert.InDelta(t, left, right, 4, "text not horizontally centered: left margin %d, right margin %d", left, right)
}

func TestRender_LongLabelFits(t *testing.T) {
	r := newBuiltinRenderer(t)
	img := r.Render("12345", severity.Bad)

	for y := 0; y < 64; y++ {
		assert.Zero(t, img.RGBAAt(0, y).A, "long label touches left edge at y=%d", y)
		assert.Zero(t, img.RGBAAt(63, y).A, "long label touches right edge at y=%d", y)
	}
}

func TestRender_EmptyText(t *testing.T) {
	r := newBuiltinRenderer(t)
	img := r.Render("", severity.Good)
	assert.False(t, hasColor(img, severity.Good))
}

func TestRender_BasicfontFallback(t *testing.T) {
	r := &Renderer{size: 64, fontSize: 40, source: "basicfont", logger: zaptest.NewLogger(t)}
	img := r.Render("ERR", severity.Unknown)

	assert.Equal(t, 64, img.Bounds().Dx())
	assert.True(t, hasColor(img, severity.Unknown))
}

func TestRenderPNG_Decodes(t *testing.T) {
	r := newBuiltinRenderer(t)
	data, err := r.RenderPNG("42", severity.Good)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
}

func TestNewRenderer_CustomSize(t *testing.T) {
	r := NewRenderer(Options{Size: 32, FontSize: 20, FontPath: "/nonexistent/font.ttf"}, zaptest.NewLogger(t))
	img := r.Render("42", severity.Good)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
}
