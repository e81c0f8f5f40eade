package cache

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies a layout document for a tree and layout options.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the inputs that change a layout besides the tree.
type LayoutKeyOpts struct {
	Threshold int    `json:"threshold"`
	Options   string `json:"options"` // hash of the full layout options
}

// ArtifactKeyOpts holds the inputs that change a rendered artifact besides
// the layout.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	PixelRatio float64 `json:"pixel_ratio,omitempty"`
	Style      string  `json:"style,omitempty"`    // hash of the render style
	Viewport   string  `json:"viewport,omitempty"` // pan/zoom state, empty for whole-document output
}

// DefaultKeyer builds keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
