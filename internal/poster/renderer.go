package poster

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	ModeAuto   = "auto"
	ModeRaster = "raster"
	ModeVector = "vector"
)

// New picks a renderer for mode. Auto prefers the raster renderer when a
// drawing surface can be set up and otherwise uses the vector one.
func New(mode, brand string, logger *zap.Logger) (Renderer, error) {
	vector := NewVectorRenderer(brand)

	switch mode {
	case ModeVector:
		return vector, nil
	case ModeRaster, ModeAuto, "":
		raster, err := NewRasterRenderer(brand)
		if err != nil {
			if mode == ModeRaster {
				return nil, err
			}
			logger.Warn("Raster poster renderer unavailable, using vector renderer", zap.Error(err))
			return vector, nil
		}
		return WithFallback(raster, vector, logger), nil
	default:
		return nil, fmt.Errorf("unknown poster renderer %q", mode)
	}
}

type fallbackRenderer struct {
	primary   Renderer
	secondary Renderer
	logger    *zap.Logger
}

// WithFallback renders with secondary whenever primary fails
func WithFallback(primary, secondary Renderer, logger *zap.Logger) Renderer {
	return &fallbackRenderer{primary: primary, secondary: secondary, logger: logger}
}

func (f *fallbackRenderer) Name() string { return f.primary.Name() }

func (f *fallbackRenderer) Render(title, category string) (*Image, error) {
	img, err := f.primary.Render(title, category)
	if err == nil {
		return img, nil
	}

	f.logger.Warn("Poster render failed, retrying with fallback renderer",
		zap.String("renderer", f.primary.Name()),
		zap.String("fallback", f.secondary.Name()),
		zap.Error(err),
	)
	return f.secondary.Render(title, category)
}
