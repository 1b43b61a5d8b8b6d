package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/panelpush/pkg/errors"
	"github.com/matzehuels/panelpush/pkg/geom"
	"github.com/matzehuels/panelpush/pkg/layout"
)

// idNamespace seeds the name-based UUIDs given to elements without an id.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/panelpush/scene"))

// Document is the on-disk form of a scene.
type Document struct {
	Name         string    `toml:"name,omitempty" yaml:"name,omitempty" json:"name,omitempty"`
	Viewport     Size      `toml:"viewport" yaml:"viewport" json:"viewport"`
	Gap          *float64  `toml:"gap,omitempty" yaml:"gap,omitempty" json:"gap,omitempty"`
	TransitionMS *int64    `toml:"transition_ms,omitempty" yaml:"transition_ms,omitempty" json:"transition_ms,omitempty"`
	Elements     []Element `toml:"elements" yaml:"elements" json:"elements"`
}

// Size is a viewport size.
type Size struct {
	Width  float64 `toml:"width" yaml:"width" json:"width"`
	Height float64 `toml:"height" yaml:"height" json:"height"`
}

// Element is one panel in a scene file.
type Element struct {
	ID       string `toml:"id,omitempty" yaml:"id,omitempty" json:"id,omitempty"`
	Priority int    `toml:"priority,omitempty" yaml:"priority,omitempty" json:"priority,omitempty"`
	Visible  *bool  `toml:"visible,omitempty" yaml:"visible,omitempty" json:"visible,omitempty"`
	Movable  *bool  `toml:"movable,omitempty" yaml:"movable,omitempty" json:"movable,omitempty"`
	Anchor   string `toml:"anchor,omitempty" yaml:"anchor,omitempty" json:"anchor,omitempty"`

	// Rect is the natural rectangle. Elements without one are treated as
	// not currently measurable and are left out of the layout.
	Rect *Box `toml:"rect,omitempty" yaml:"rect,omitempty" json:"rect,omitempty"`
}

// Box is a rectangle given by its top-left corner and size.
type Box struct {
	X      float64 `toml:"x" yaml:"x" json:"x"`
	Y      float64 `toml:"y" yaml:"y" json:"y"`
	Width  float64 `toml:"width" yaml:"width" json:"width"`
	Height float64 `toml:"height" yaml:"height" json:"height"`
}

// Rect converts the box to a geom.Rect.
func (b Box) Rect() geom.Rect { return geom.NewRect(b.X, b.Y, b.Width, b.Height) }

// BoxOf converts a geom.Rect to a Box.
func BoxOf(r geom.Rect) Box {
	return Box{X: r.Left, Y: r.Top, Width: r.Width(), Height: r.Height()}
}

// Scene is a decoded scene ready for layout.
type Scene struct {
	// Path is the file the scene was loaded from, empty for parsed data.
	Path string

	// Format is the encoding the scene was decoded from.
	Format Format

	Doc Document
}

// New wraps doc in a Scene, giving every element without an id a stable
// generated one.
func New(doc Document) *Scene {
	s := &Scene{Doc: doc}
	s.fillIDs()
	return s
}

// Parse decodes a scene. It does not validate it; see [Scene.Validate].
func Parse(data []byte, format Format) (*Scene, error) {
	return parse(data, format, "")
}

// Load reads, decodes and validates the scene file at path. The format is
// inferred from the extension.
func Load(path string) (*Scene, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	s, err := parse(data, format, path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "load %s", path)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func parse(data []byte, format Format, path string) (*Scene, error) {
	var doc Document
	if err := decode(data, format, &doc); err != nil {
		return nil, err
	}
	s := &Scene{Path: path, Format: format, Doc: doc}
	s.fillIDs()
	return s, nil
}

func (s *Scene) fillIDs() {
	name := s.Name()
	for i := range s.Doc.Elements {
		if s.Doc.Elements[i].ID == "" {
			s.Doc.Elements[i].ID = uuid.NewSHA1(idNamespace, fmt.Appendf(nil, "%s/%d", name, i)).String()
		}
	}
}

// Name returns the scene's name, falling back to the file name without its
// extension.
func (s *Scene) Name() string {
	if s.Doc.Name != "" {
		return s.Doc.Name
	}
	if s.Path != "" {
		base := filepath.Base(s.Path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "scene"
}

// Validate reports every problem with the scene at once.
func (s *Scene) Validate() error {
	v := errors.ValidationErrors{Code: errors.ErrCodeInvalidScene}

	v.Add(errors.ValidateViewport(s.Doc.Viewport.Width, s.Doc.Viewport.Height))
	if s.Doc.Gap != nil {
		v.Add(errors.ValidateLength("gap", *s.Doc.Gap))
	}
	if s.Doc.TransitionMS != nil && *s.Doc.TransitionMS < 0 {
		v.Add(errors.New(errors.ErrCodeInvalidInput, "transition_ms cannot be negative (got %d)", *s.Doc.TransitionMS))
	}

	seen := make(map[string]int, len(s.Doc.Elements))
	for i, el := range s.Doc.Elements {
		if err := errors.ValidateElementID(el.ID); err != nil {
			v.Add(errors.Wrap(errors.ErrCodeInvalidElement, err, "element #%d", i))
			continue
		}
		if first, dup := seen[el.ID]; dup {
			v.Add(errors.New(errors.ErrCodeInvalidElement, "element %q: duplicate id (first used by element #%d)", el.ID, first))
		} else {
			seen[el.ID] = i
		}
		if _, err := geom.ParseDirection(el.Anchor); err != nil {
			v.Add(errors.Wrap(errors.ErrCodeInvalidElement, err, "element %q: bad anchor", el.ID))
		}
		if el.Rect != nil {
			v.Add(validateBox(el.ID, *el.Rect))
		}
	}

	return v.Err("invalid scene %s", s.Name())
}

func validateBox(id string, b Box) error {
	for _, c := range []struct {
		name string
		v    float64
	}{{"x", b.X}, {"y", b.Y}} {
		if err := errors.ValidateCoordinate(c.name, c.v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidElement, err, "element %q: bad rect", id)
		}
	}
	for _, c := range []struct {
		name string
		v    float64
	}{{"width", b.Width}, {"height", b.Height}} {
		if err := errors.ValidateLength(c.name, c.v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidElement, err, "element %q: bad rect", id)
		}
	}
	return nil
}

// Elements returns the layout descriptors in file order. Anchors that do not
// parse fall back to automatic; Validate reports them.
func (s *Scene) Elements() []layout.Element[string] {
	out := make([]layout.Element[string], 0, len(s.Doc.Elements))
	for _, el := range s.Doc.Elements {
		anchor, _ := geom.ParseDirection(el.Anchor)
		out = append(out, layout.Element[string]{
			ID:        el.ID,
			Priority:  el.Priority,
			Hidden:    el.Visible != nil && !*el.Visible,
			Immovable: el.Movable != nil && !*el.Movable,
			Anchor:    anchor,
		})
	}
	return out
}

// Rects returns the natural rectangles of the elements that have one.
func (s *Scene) Rects() layout.Rects[string] {
	out := make(layout.Rects[string], len(s.Doc.Elements))
	for _, el := range s.Doc.Elements {
		if el.Rect != nil {
			out[el.ID] = el.Rect.Rect()
		}
	}
	return out
}

// Viewport returns the scene's viewport.
func (s *Scene) Viewport() geom.Viewport {
	return geom.Viewport{Width: s.Doc.Viewport.Width, Height: s.Doc.Viewport.Height}
}

// Gap returns the scene's gap, or layout.DefaultGap when unset.
func (s *Scene) Gap() float64 {
	if s.Doc.Gap == nil {
		return layout.DefaultGap
	}
	return *s.Doc.Gap
}

// Transition returns the scene's transition, or layout.DefaultTransition
// when unset.
func (s *Scene) Transition() time.Duration {
	if s.Doc.TransitionMS == nil {
		return layout.DefaultTransition
	}
	return time.Duration(*s.Doc.TransitionMS) * time.Millisecond
}

// Encode serializes the scene document.
func (s *Scene) Encode(format Format) ([]byte, error) {
	return encode(s.Doc, format)
}
