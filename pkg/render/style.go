package render

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/astlens/pkg/errors"
)

// Style is the visual theme of the node-link drawing. Colors are hex
// strings ("#rrggbb") so a Style can be loaded from a config file as-is.
type Style struct {
	Background string `json:"background" toml:"background"`
	Fill       string `json:"fill" toml:"fill"`           // inner nodes
	LeafFill   string `json:"leaf_fill" toml:"leaf_fill"` // nodes without children
	Stroke     string `json:"stroke" toml:"stroke"`
	Edge       string `json:"edge" toml:"edge"`
	Text       string `json:"text" toml:"text"`
	SubText    string `json:"sub_text" toml:"sub_text"`

	FontSize    float64 `json:"font_size" toml:"font_size"`
	SubFontSize float64 `json:"sub_font_size" toml:"sub_font_size"`
	Radius      float64 `json:"radius" toml:"radius"`
	StrokeWidth float64 `json:"stroke_width" toml:"stroke_width"`
	EdgeWidth   float64 `json:"edge_width" toml:"edge_width"`

	// MaxLabelChars truncates primary labels; MaxSubLabelChars truncates
	// secondary ones. Zero means the default limit and a negative value
	// disables truncation.
	MaxLabelChars    int `json:"max_label_chars" toml:"max_label_chars"`
	MaxSubLabelChars int `json:"max_sub_label_chars" toml:"max_sub_label_chars"`
}

// DefaultStyle returns the stock light theme.
func DefaultStyle() Style {
	return Style{
		Background:       "#ffffff",
		Fill:             "#eaf1fb",
		LeafFill:         "#fdf6e3",
		Stroke:           "#4a6fa5",
		Edge:             "#8a99ad",
		Text:             "#1d2633",
		SubText:          "#5c6b7a",
		FontSize:         13,
		SubFontSize:      10,
		Radius:           6,
		StrokeWidth:      1.2,
		EdgeWidth:        1.2,
		MaxLabelChars:    18,
		MaxSubLabelChars: 24,
	}
}

// colorField names one hex color of a Style and its default.
type colorField struct {
	name string
	hex  *string
	def  string
}

func (s *Style) colorFields() []colorField {
	d := DefaultStyle()
	return []colorField{
		{"background", &s.Background, d.Background},
		{"fill", &s.Fill, d.Fill},
		{"leaf_fill", &s.LeafFill, d.LeafFill},
		{"stroke", &s.Stroke, d.Stroke},
		{"edge", &s.Edge, d.Edge},
		{"text", &s.Text, d.Text},
		{"sub_text", &s.SubText, d.SubText},
	}
}

// SetDefaults fills empty fields from DefaultStyle.
func (s *Style) SetDefaults() {
	for _, f := range s.colorFields() {
		if *f.hex == "" {
			*f.hex = f.def
		}
	}
	d := DefaultStyle()
	if s.FontSize == 0 {
		s.FontSize = d.FontSize
	}
	if s.SubFontSize == 0 {
		s.SubFontSize = d.SubFontSize
	}
	if s.Radius == 0 {
		s.Radius = d.Radius
	}
	if s.StrokeWidth == 0 {
		s.StrokeWidth = d.StrokeWidth
	}
	if s.EdgeWidth == 0 {
		s.EdgeWidth = d.EdgeWidth
	}
	if s.MaxLabelChars == 0 {
		s.MaxLabelChars = d.MaxLabelChars
	}
	if s.MaxSubLabelChars == 0 {
		s.MaxSubLabelChars = d.MaxSubLabelChars
	}
}

// Validate checks that every color parses and sizes are non-negative.
func (s Style) Validate() error {
	if _, err := s.palette(); err != nil {
		return err
	}
	if s.FontSize <= 0 || s.SubFontSize <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "font sizes must be positive")
	}
	if s.Radius < 0 || s.StrokeWidth < 0 || s.EdgeWidth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "radius and line widths must be >= 0")
	}
	if s.MaxLabelChars == 0 || s.MaxSubLabelChars == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "label limits must be set (negative disables truncation)")
	}
	return nil
}

// palette is a Style with its colors parsed.
type palette struct {
	background, fill, leafFill, stroke, edge, text, subText colorful.Color
}

func (s Style) palette() (palette, error) {
	var p palette
	dst := []*colorful.Color{&p.background, &p.fill, &p.leafFill, &p.stroke, &p.edge, &p.text, &p.subText}
	for i, f := range s.colorFields() {
		c, err := colorful.Hex(*f.hex)
		if err != nil {
			return palette{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "style %s: bad color %q", f.name, *f.hex)
		}
		*dst[i] = c
	}
	return p, nil
}

// resolve parses the palette, replacing colors that do not parse with the
// default theme's.
func (s Style) resolve() palette {
	for _, f := range s.colorFields() {
		if _, err := colorful.Hex(*f.hex); err != nil {
			*f.hex = f.def
		}
	}
	p, _ := s.palette()
	return p
}

// Truncate shortens s to at most n runes, replacing the tail with an
// ellipsis. n <= 0 leaves s unchanged.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
