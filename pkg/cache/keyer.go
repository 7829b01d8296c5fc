package cache

// Keyer derives cache keys. Keys include every option that changes the
// cached bytes, so two requests share an entry only if they would produce
// the same output.
type Keyer interface {
	// DatasetKey addresses a normalized dataset by the hash of its source.
	DatasetKey(sourceHash string) string
	// LayoutKey addresses a state document computed from a source.
	LayoutKey(sourceHash string, opts LayoutKeyOpts) string
	// ArtifactKey addresses rendered output of a state document.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs that shape a computed layout.
type LayoutKeyOpts struct {
	Revision   int      `json:"revision"`
	Language   string   `json:"lang,omitempty"`
	Expand     []string `json:"expand,omitempty"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	CompWidth  float64  `json:"comparison_width"`
	CompHeight float64  `json:"comparison_height"`
	Iterations int      `json:"iterations"`
}

// ArtifactKeyOpts are the inputs that shape rendered output.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Panel  string `json:"panel,omitempty"`
	Title  string `json:"title,omitempty"`
	Links  bool   `json:"links"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) DatasetKey(sourceHash string) string {
	return "dataset:" + sourceHash
}

func (DefaultKeyer) LayoutKey(sourceHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", sourceHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
