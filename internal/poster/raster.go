package poster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

const mimePNG = "image/png"

var (
	gradientStart = color.NRGBA{R: 0xfb, G: 0x92, B: 0x3c, A: 0xff}
	gradientEnd   = color.NRGBA{R: 0xfb, G: 0xbf, B: 0x24, A: 0xff}
	overlayColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 26}
	badgeColor    = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 230}
	textColor     = color.White
	categoryColor = gradientStart
)

// RasterRenderer draws the poster onto an RGBA canvas and encodes it as PNG
type RasterRenderer struct {
	brand string
	font  *sfnt.Font
}

// NewRasterRenderer loads the bundled bold face. An error means no raster
// surface is available and callers should use the vector renderer.
func NewRasterRenderer(brand string) (*RasterRenderer, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse poster font: %w", err)
	}

	r := &RasterRenderer{brand: brand, font: f}
	face, err := r.face(24)
	if err != nil {
		return nil, err
	}
	face.Close()

	return r, nil
}

func (r *RasterRenderer) Name() string { return "raster" }

// Render is safe for concurrent use; faces are created per call because
// they cache glyph state.
func (r *RasterRenderer) Render(title, category string) (*Image, error) {
	layout := NewLayout(r.brand, title, category)
	canvas := image.NewRGBA(image.Rect(0, 0, Width, Height))

	fillGradient(canvas)
	draw.Draw(canvas, image.Rect(0, 300, Width, Height), image.NewUniform(overlayColor), image.Point{}, draw.Over)

	if err := r.drawCentered(canvas, layout.Brand, 24, 60, textColor); err != nil {
		return nil, err
	}
	for i, line := range layout.TitleLines {
		if err := r.drawCentered(canvas, line, 28, 180+i*45, textColor); err != nil {
			return nil, err
		}
	}

	draw.Draw(canvas, image.Rect(50, 420, 350, 470), image.NewUniform(badgeColor), image.Point{}, draw.Over)
	if err := r.drawCentered(canvas, layout.Category, 18, 455, categoryColor); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode poster: %w", err)
	}

	return &Image{Data: buf.Bytes(), MIMEType: mimePNG, Renderer: r.Name()}, nil
}

func (r *RasterRenderer) face(size float64) (font.Face, error) {
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %.0fpx face: %w", size, err)
	}
	return face, nil
}

func (r *RasterRenderer) drawCentered(dst draw.Image, text string, size float64, baseline int, c color.Color) error {
	face, err := r.face(size)
	if err != nil {
		return err
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	width := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: fixed.I(Width/2) - width/2,
		Y: fixed.I(baseline),
	}
	d.DrawString(text)
	return nil
}

// fillGradient paints the diagonal two-stop gradient from the top-left to
// the bottom-right corner.
func fillGradient(img *image.RGBA) {
	const denom = Width*Width + Height*Height
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			t := float64(x*Width+y*Height) / denom
			img.Set(x, y, lerp(gradientStart, gradientEnd, t))
		}
	}
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(p, q uint8) uint8 {
		return uint8(float64(p) + (float64(q)-float64(p))*t + 0.5)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}
