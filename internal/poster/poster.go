package poster

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
	"unicode"
)

// Poster canvas size (4:5)
const (
	Width  = 400
	Height = 500
)

const (
	DefaultBrand = "VIBESHOP"

	titleLineRunes = 30
	ellipsis       = "..."
)

var ErrInvalidDataURI = errors.New("invalid data URI")

// Image is an encoded poster
type Image struct {
	Data     []byte
	MIMEType string
	Renderer string
}

// DataURI returns the base64 data URI of the image
func (i *Image) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Renderer draws the promotional poster for a listing
type Renderer interface {
	Render(title, category string) (*Image, error)
	Name() string
}

// Layout is the text content shared by every renderer
type Layout struct {
	Brand      string
	TitleLines []string
	Category   string
}

// NewLayout splits the title into at most two lines of 30 runes, the second
// one shortened with an ellipsis, and upper-cases the category label.
func NewLayout(brand, title, category string) Layout {
	if brand == "" {
		brand = DefaultBrand
	}

	runes := []rune(strings.TrimSpace(title))
	var lines []string
	if len(runes) <= titleLineRunes {
		lines = []string{string(runes)}
	} else {
		first := strings.TrimRightFunc(string(runes[:titleLineRunes]), unicode.IsSpace)
		rest := []rune(strings.TrimLeftFunc(string(runes[titleLineRunes:]), unicode.IsSpace))
		if len(rest) > titleLineRunes {
			rest = append(rest[:titleLineRunes-len(ellipsis)], []rune(ellipsis)...)
		}
		lines = []string{first}
		if len(rest) > 0 {
			lines = append(lines, string(rest))
		}
	}

	return Layout{
		Brand:      brand,
		TitleLines: lines,
		Category:   strings.ToUpper(category),
	}
}

// DecodeDataURI splits a base64 data URI into its payload and MIME type
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return data, mimeType, nil
}

// Dimensions reports the declared size of a poster data URI
func Dimensions(uri string) (int, int, error) {
	data, mimeType, err := DecodeDataURI(uri)
	if err != nil {
		return 0, 0, err
	}

	switch mimeType {
	case mimeSVG:
		return svgDimensions(data)
	default:
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return 0, 0, fmt.Errorf("failed to decode %s: %w", mimeType, err)
		}
		return cfg.Width, cfg.Height, nil
	}
}

func svgDimensions(data []byte) (int, int, error) {
	var root struct {
		XMLName xml.Name
		Width   string `xml:"width,attr"`
		Height  string `xml:"height,attr"`
	}
	if err := xml.Unmarshal(data, &root); err != nil {
		return 0, 0, fmt.Errorf("failed to decode svg: %w", err)
	}
	if root.XMLName.Local != "svg" {
		return 0, 0, fmt.Errorf("unexpected root element %q", root.XMLName.Local)
	}

	w, err := strconv.Atoi(root.Width)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid svg width %q", root.Width)
	}
	h, err := strconv.Atoi(root.Height)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid svg height %q", root.Height)
	}
	return w, h, nil
}
