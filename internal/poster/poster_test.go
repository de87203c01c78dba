package poster

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingRenderer struct{}

func (failingRenderer) Render(title, category string) (*Image, error) {
	return nil, errors.New("no drawing surface")
}

func (failingRenderer) Name() string { return "failing" }

func TestNewLayout(t *testing.T) {
	l := NewLayout("", "Ankara Tote", "beauty")
	assert.Equal(t, DefaultBrand, l.Brand)
	assert.Equal(t, []string{"Ankara Tote"}, l.TitleLines)
	assert.Equal(t, "BEAUTY", l.Category)

	long := NewLayout("VIBESHOP", "Handwoven Aso-Oke Statement Headwrap with Gold Thread Accents for Owambe", "fashion")
	require.Len(t, long.TitleLines, 2)
	assert.Equal(t, "Handwoven Aso-Oke Statement He", long.TitleLines[0])
	assert.LessOrEqual(t, len([]rune(long.TitleLines[1])), 30)
	assert.True(t, strings.HasSuffix(long.TitleLines[1], "..."))
}

func TestVectorRenderer_EmbedsTextAndSize(t *testing.T) {
	img, err := NewVectorRenderer("VIBESHOP").Render("Premium Furniture Product", "furniture")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", img.MIMEType)

	svg := string(img.Data)
	assert.Contains(t, svg, ">VIBESHOP<")
	assert.Contains(t, svg, ">Premium Furniture Product<")
	assert.Contains(t, svg, ">FURNITURE<")

	w, h, err := Dimensions(img.DataURI())
	require.NoError(t, err)
	assert.Equal(t, Width, w)
	assert.Equal(t, Height, h)
}

func TestVectorRenderer_EscapesMarkup(t *testing.T) {
	img, err := NewVectorRenderer("").Render(`Tom & Jerry <script>"x"</script>`, "art&craft")
	require.NoError(t, err)

	svg := string(img.Data)
	assert.NotContains(t, svg, "<script>")
	assert.Contains(t, svg, "Tom &amp; Jerry &lt;script&gt;")
	assert.Contains(t, svg, "ART&amp;CRAFT")

	_, _, err = Dimensions(img.DataURI())
	assert.NoError(t, err, "escaped poster must still be well-formed XML")
}

func TestRasterRenderer_ProducesPNG(t *testing.T) {
	r, err := NewRasterRenderer("VIBESHOP")
	require.NoError(t, err)

	img, err := r.Render("Premium Beauty Product", "beauty")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, "raster", img.Renderer)
	assert.True(t, strings.HasPrefix(img.DataURI(), "data:image/png;base64,"))

	w, h, err := Dimensions(img.DataURI())
	require.NoError(t, err)
	assert.Equal(t, Width, w)
	assert.Equal(t, Height, h)
}

func TestFallbackRenderer(t *testing.T) {
	r := WithFallback(failingRenderer{}, NewVectorRenderer(""), zap.NewNop())

	img, err := r.Render("Premium Art Product", "art")
	require.NoError(t, err)
	assert.Equal(t, "vector", img.Renderer)
	assert.Equal(t, "failing", r.Name())
}

func TestNew_Modes(t *testing.T) {
	logger := zap.NewNop()

	r, err := New(ModeVector, "", logger)
	require.NoError(t, err)
	assert.Equal(t, "vector", r.Name())

	r, err = New(ModeAuto, "", logger)
	require.NoError(t, err)
	assert.Equal(t, "raster", r.Name())

	r, err = New(ModeRaster, "", logger)
	require.NoError(t, err)
	assert.Equal(t, "raster", r.Name())

	_, err = New("canvas", "", logger)
	assert.Error(t, err)
}

func TestDecodeDataURI_Rejects(t *testing.T) {
	for _, uri := range []string{"", "https://cdn.vibeshop.ng/p.png", "data:image/png,abc", "data:image/png;base64,@@@"} {
		_, _, err := DecodeDataURI(uri)
		assert.ErrorIs(t, err, ErrInvalidDataURI, "uri %q", uri)
	}
}

// Property: both renderers always declare a 400x500 canvas
func TestProperty_PostersAreAlways400x500(t *testing.T) {
	raster, err := NewRasterRenderer(DefaultBrand)
	require.NoError(t, err)
	renderers := []Renderer{raster, NewVectorRenderer(DefaultBrand)}

	properties := gopter.NewProperties(nil)

	properties.Property("poster dimensions are fixed", prop.ForAll(
		func(title string, category string, which int) bool {
			img, err := renderers[which].Render(title, category)
			if err != nil {
				return false
			}
			w, h, err := Dimensions(img.DataURI())
			return err == nil && w == Width && h == Height
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(0, 1),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
