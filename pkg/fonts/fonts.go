// Package fonts provides the label fonts used by the raster renderer.
//
// The Go font family ships inside golang.org/x/image, so the binary needs no
// font files at run time. Fonts are parsed once on first use.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family name matching the raster font.
const FontFamily = "Go"

var (
	parseOnce     sync.Once
	regular, bold *truetype.Font
	parseErr      error
)

func parse() {
	parseOnce.Do(func() {
		if regular, parseErr = truetype.Parse(goregular.TTF); parseErr != nil {
			parseErr = fmt.Errorf("parse Go Regular: %w", parseErr)
			return
		}
		if bold, parseErr = truetype.Parse(gobold.TTF); parseErr != nil {
			parseErr = fmt.Errorf("parse Go Bold: %w", parseErr)
		}
	})
}

// Regular returns the parsed Go Regular font.
func Regular() (*truetype.Font, error) {
	parse()
	return regular, parseErr
}

// Bold returns the parsed Go Bold font.
func Bold() (*truetype.Font, error) {
	parse()
	return bold, parseErr
}

// Face returns a new hinted face of the given point size at 72 DPI.
// Faces keep glyph caches and are not safe for concurrent use; callers
// hold one per drawing surface.
func Face(size float64, isBold bool) (font.Face, error) {
	parse()
	if parseErr != nil {
		return nil, parseErr
	}
	f := regular
	if isBold {
		f = bold
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    max(size, 1),
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
