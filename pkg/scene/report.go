package scene

import (
	"os"

	"github.com/matzehuels/panelpush/pkg/errors"
	"github.com/matzehuels/panelpush/pkg/geom"
	"github.com/matzehuels/panelpush/pkg/layout"
)

// Report is the serializable outcome of laying out a scene.
type Report struct {
	Scene      string          `toml:"scene" yaml:"scene" json:"scene"`
	Viewport   Size            `toml:"viewport" yaml:"viewport" json:"viewport"`
	Gap        float64         `toml:"gap" yaml:"gap" json:"gap"`
	Placements []PlacedElement `toml:"placements" yaml:"placements" json:"placements"`
	Skipped    []string        `toml:"skipped,omitempty" yaml:"skipped,omitempty" json:"skipped,omitempty"`
}

// PlacedElement is the placement of one element in a report.
type PlacedElement struct {
	ID           string  `toml:"id" yaml:"id" json:"id"`
	DX           float64 `toml:"dx" yaml:"dx" json:"dx"`
	DY           float64 `toml:"dy" yaml:"dy" json:"dy"`
	ZIndex       int     `toml:"z_index" yaml:"z_index" json:"z_index"`
	TransitionMS int64   `toml:"transition_ms" yaml:"transition_ms" json:"transition_ms"`
	Transform    string  `toml:"transform" yaml:"transform" json:"transform"`

	// Rect is the displayed rectangle, natural rectangle plus offset.
	Rect Box `toml:"rect" yaml:"rect" json:"rect"`
}

// Moved reports whether the element left its natural position.
func (p PlacedElement) Moved() bool { return p.DX != 0 || p.DY != 0 }

// NewReport builds a report from a resolution of s against vp. Placements
// follow the resolution order; elements the layout left out are listed as
// skipped in file order.
func NewReport(s *Scene, res layout.Result[string], vp geom.Viewport, gap float64) Report {
	rects := s.Rects()
	r := Report{
		Scene:      s.Name(),
		Viewport:   Size{Width: vp.Width, Height: vp.Height},
		Gap:        gap,
		Placements: make([]PlacedElement, 0, res.Len()),
	}
	for _, id := range res.Order {
		p, _ := res.Get(id)
		r.Placements = append(r.Placements, PlacedElement{
			ID:           id,
			DX:           p.Offset.DX,
			DY:           p.Offset.DY,
			ZIndex:       p.ZIndex,
			TransitionMS: p.Transition.Milliseconds(),
			Transform:    p.Transform(),
			Rect:         BoxOf(p.Apply(rects[id])),
		})
	}
	for _, el := range s.Doc.Elements {
		if _, ok := res.Placements[el.ID]; !ok {
			r.Skipped = append(r.Skipped, el.ID)
		}
	}
	return r
}

// Lookup returns the placement of id.
func (r Report) Lookup(id string) (PlacedElement, bool) {
	for _, p := range r.Placements {
		if p.ID == id {
			return p, true
		}
	}
	return PlacedElement{}, false
}

// MarshalReport encodes a report.
func MarshalReport(r Report, format Format) ([]byte, error) {
	return encode(r, format)
}

// UnmarshalReport decodes a report.
func UnmarshalReport(data []byte, format Format) (Report, error) {
	var r Report
	if err := decode(data, format, &r); err != nil {
		return Report{}, err
	}
	return r, nil
}

// WriteReportFile writes a report to path in the format implied by its
// extension.
func WriteReportFile(r Report, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := MarshalReport(r, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
