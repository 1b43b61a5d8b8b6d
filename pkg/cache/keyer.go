package cache

import "time"

// Keyer builds cache keys.
type Keyer interface {
	// ResultKey returns the key for the report of a scene with the given
	// content hash, resolved with opts.
	ResultKey(sceneHash string, opts ResultKeyOpts) string
}

// ResultKeyOpts holds every option that changes a resolution result.
type ResultKeyOpts struct {
	Gap        float64       `json:"gap"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Transition time.Duration `json:"transition"`
	ZStep      int           `json:"z_step"`
	Format     string        `json:"format"`
}

// DefaultKeyer generates keys of the form "result:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(sceneHash string, opts ResultKeyOpts) string {
	return hashKey("result", sceneHash, opts)
}
