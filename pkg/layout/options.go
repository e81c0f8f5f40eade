package layout

import (
	"github.com/matzehuels/astlens/pkg/errors"
)

// Default spacing constants, in world units.
const (
	DefaultThreshold = 3
	DefaultBoxWidth  = 140.0
	DefaultBoxHeight = 44.0
	DefaultHGap      = 24.0
	DefaultVGap      = 14.0
	DefaultLevelGap  = 48.0
	DefaultIndent    = 180.0
	DefaultGutter    = 18.0
	DefaultMargin    = 20.0
)

// Options are the fixed spacing constants of a layout pass.
type Options struct {
	// Threshold is the largest fan-out still arranged as a row. Nodes with
	// more direct children are arranged as a column.
	Threshold int `json:"threshold" toml:"threshold"`

	BoxWidth  float64 `json:"box_width" toml:"box_width"`
	BoxHeight float64 `json:"box_height" toml:"box_height"`

	HGap     float64 `json:"hgap" toml:"hgap"`           // row: gap between siblings
	VGap     float64 `json:"vgap" toml:"vgap"`           // column: gap between siblings
	LevelGap float64 `json:"level_gap" toml:"level_gap"` // row: parent bottom to children top
	Indent   float64 `json:"indent" toml:"indent"`       // column: child x offset from parent
	Gutter   float64 `json:"gutter" toml:"gutter"`       // column: edge gutter right of parent box
	Margin   float64 `json:"margin" toml:"margin"`
}

// DefaultOptions returns the stock spacing.
func DefaultOptions() Options {
	return Options{
		Threshold: DefaultThreshold,
		BoxWidth:  DefaultBoxWidth,
		BoxHeight: DefaultBoxHeight,
		HGap:      DefaultHGap,
		VGap:      DefaultVGap,
		LevelGap:  DefaultLevelGap,
		Indent:    DefaultIndent,
		Gutter:    DefaultGutter,
		Margin:    DefaultMargin,
	}
}

// SetDefaults fills zero-valued sizes with their defaults. Threshold is
// left alone because zero is a meaningful value (every parent is a column).
func (o *Options) SetDefaults() {
	if o.BoxWidth == 0 {
		o.BoxWidth = DefaultBoxWidth
	}
	if o.BoxHeight == 0 {
		o.BoxHeight = DefaultBoxHeight
	}
	if o.HGap == 0 {
		o.HGap = DefaultHGap
	}
	if o.VGap == 0 {
		o.VGap = DefaultVGap
	}
	if o.LevelGap == 0 {
		o.LevelGap = DefaultLevelGap
	}
	if o.Gutter == 0 {
		o.Gutter = DefaultGutter
	}
	if o.Indent == 0 {
		o.Indent = max(DefaultIndent, o.BoxWidth+o.Gutter)
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
}

// Validate checks that the options describe a drawable layout.
func (o Options) Validate() error {
	if o.Threshold < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "threshold must be >= 0, got %d", o.Threshold)
	}
	if o.BoxWidth <= 0 || o.BoxHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "box size must be positive, got %gx%g", o.BoxWidth, o.BoxHeight)
	}
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"hgap", o.HGap},
		{"vgap", o.VGap},
		{"level_gap", o.LevelGap},
		{"gutter", o.Gutter},
		{"margin", o.Margin},
	} {
		if v.val < 0 {
			return errors.New(errors.ErrCodeInvalidLayout, "%s must be >= 0, got %g", v.name, v.val)
		}
	}
	if o.Indent < o.BoxWidth+o.Gutter {
		return errors.New(errors.ErrCodeInvalidLayout,
			"indent %g overlaps the edge gutter (need at least box_width+gutter = %g)", o.Indent, o.BoxWidth+o.Gutter)
	}
	return nil
}

// Strategy returns the arrangement used for a node with childCount direct
// children. It is the single place where the decision is made; Compute
// records the result per node so every later pass reads the same value.
func (o Options) Strategy(childCount int) Strategy {
	switch {
	case childCount <= 0:
		return Leaf
	case childCount <= o.Threshold:
		return Row
	default:
		return Column
	}
}

// Strategy is the child arrangement of a node.
type Strategy uint8

const (
	Leaf   Strategy = iota // no children
	Row                    // children left-to-right below the parent
	Column                 // children top-to-bottom, indented right
)

var strategyNames = [...]string{Leaf: "leaf", Row: "row", Column: "column"}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

// ParseStrategy is the inverse of Strategy.String.
func ParseStrategy(s string) (Strategy, bool) {
	for i, name := range strategyNames {
		if name == s {
			return Strategy(i), true
		}
	}
	return 0, false
}
