package poster

import (
	"bytes"
	"encoding/xml"
	"text/template"
)

const mimeSVG = "image/svg+xml"

var svgTemplate = template.Must(template.New("poster").Funcs(template.FuncMap{
	"xml":     escapeXML,
	"titleY":  func(i int) int { return 180 + i*45 },
	"width":   func() int { return Width },
	"height":  func() int { return Height },
	"centerX": func() int { return Width / 2 },
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{width}}" height="{{height}}" viewBox="0 0 {{width}} {{height}}">
<defs><linearGradient id="grad" x1="0%" y1="0%" x2="100%" y2="100%"><stop offset="0%" stop-color="#fb923c"/><stop offset="100%" stop-color="#fbbf24"/></linearGradient></defs>
<rect fill="url(#grad)" width="{{width}}" height="{{height}}"/>
<rect fill="#ffffff" fill-opacity="0.1" y="300" width="{{width}}" height="200"/>
<text x="{{centerX}}" y="60" font-size="24" fill="#ffffff" font-weight="bold" text-anchor="middle" font-family="Arial">{{xml .Brand}}</text>
{{range $i, $line := .TitleLines}}<text x="{{centerX}}" y="{{titleY $i}}" font-size="28" fill="#ffffff" font-weight="bold" text-anchor="middle" font-family="Arial">{{xml $line}}</text>
{{end}}<rect fill="#ffffff" fill-opacity="0.9" x="50" y="420" width="300" height="50"/>
<text x="{{centerX}}" y="455" font-size="18" fill="#fb923c" font-weight="bold" text-anchor="middle" font-family="Arial">{{xml .Category}}</text>
</svg>`))

// VectorRenderer produces an SVG poster. It needs no fonts or drawing
// surface, so it is always available.
type VectorRenderer struct {
	brand string
}

func NewVectorRenderer(brand string) *VectorRenderer {
	return &VectorRenderer{brand: brand}
}

func (v *VectorRenderer) Name() string { return "vector" }

func (v *VectorRenderer) Render(title, category string) (*Image, error) {
	var buf bytes.Buffer
	if err := svgTemplate.Execute(&buf, NewLayout(v.brand, title, category)); err != nil {
		return nil, err
	}
	return &Image{Data: buf.Bytes(), MIMEType: mimeSVG, Renderer: v.Name()}, nil
}

func escapeXML(s string) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
