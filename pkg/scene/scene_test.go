package scene

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/panelpush/pkg/errors"
	"github.com/matzehuels/panelpush/pkg/geom"
	"github.com/matzehuels/panelpush/pkg/layout"
)

func TestLoadFormats(t *testing.T) {
	want, err := Load(filepath.Join("testdata", "city.toml"))
	require.NoError(t, err)

	for _, name := range []string{"city.yaml", "city.json"} {
		t.Run(name, func(t *testing.T) {
			got, err := Load(filepath.Join("testdata", name))
			require.NoError(t, err)

			if diff := cmp.Diff(want.Elements(), got.Elements()); diff != "" {
				t.Errorf("Elements() mismatch (-toml +%s):\n%s", name, diff)
			}
			if diff := cmp.Diff(want.Rects(), got.Rects()); diff != "" {
				t.Errorf("Rects() mismatch (-toml +%s):\n%s", name, diff)
			}
			assert.Equal(t, want.Viewport(), got.Viewport())
			assert.Equal(t, want.Gap(), got.Gap())
			assert.Equal(t, want.Transition(), got.Transition())
		})
	}
}

func TestLoadCity(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "city.toml"))
	require.NoError(t, err)

	assert.Equal(t, "city-map", s.Name())
	assert.Equal(t, FormatTOML, s.Format)
	assert.Equal(t, geom.Viewport{Width: 1600, Height: 900}, s.Viewport())
	assert.Equal(t, 16.0, s.Gap())
	assert.Equal(t, 250*time.Millisecond, s.Transition())

	elems := s.Elements()
	require.Len(t, elems, 5)
	assert.Equal(t, layout.Element[string]{ID: "search", Priority: 10, Immovable: true}, elems[0])
	assert.Equal(t, layout.Element[string]{ID: "drawer", Priority: 5, Anchor: geom.Left}, elems[2])
	assert.True(t, elems[3].Hidden)

	rects := s.Rects()
	assert.Len(t, rects, 4, "element without rect is unmeasurable")
	assert.Equal(t, geom.NewRect(600, 140, 300, 100), rects["city-detail"])
}

func TestGeneratedIDsAreStable(t *testing.T) {
	a, err := Load(filepath.Join("testdata", "city.toml"))
	require.NoError(t, err)
	b, err := Load(filepath.Join("testdata", "city.json"))
	require.NoError(t, err)

	id := a.Doc.Elements[4].ID
	_, err = uuid.Parse(id)
	require.NoError(t, err, "generated id %q should be a UUID", id)
	assert.Equal(t, id, b.Doc.Elements[4].ID)

	other := New(Document{Name: "other", Elements: []Element{{}, {}}})
	assert.NotEqual(t, other.Doc.Elements[0].ID, other.Doc.Elements[1].ID)
	assert.NotEqual(t, id, other.Doc.Elements[0].ID)
}

func TestNameFallsBackToFile(t *testing.T) {
	s := &Scene{Path: "/tmp/dashboards/ops.yaml"}
	assert.Equal(t, "ops", s.Name())

	assert.Equal(t, "scene", (&Scene{}).Name())
}

func TestDefaults(t *testing.T) {
	s, err := Parse([]byte(`{"viewport": {"width": 800, "height": 600}, "elements": []}`), FormatJSON)
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, layout.DefaultGap, s.Gap())
	assert.Equal(t, layout.DefaultTransition, s.Transition())
	assert.Empty(t, s.Elements())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"viewport": {"width": 1, "height": 1}, "colour": "red"}`), 0o644))
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("viewport: [1, 2\n"), 0o644))
	unknownTOML := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknownTOML, []byte("colour = \"red\"\n[viewport]\nwidth = 1\nheight = 1\n"), 0o644))

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing file", filepath.Join(dir, "nope.toml"), errors.ErrCodeFileNotFound},
		{"unknown extension", filepath.Join(dir, "scene.ini"), errors.ErrCodeInvalidFormat},
		{"empty path", "", errors.ErrCodeInvalidPath},
		{"unknown json field", unknown, errors.ErrCodeInvalidScene},
		{"unknown toml field", unknownTOML, errors.ErrCodeInvalidScene},
		{"malformed yaml", broken, errors.ErrCodeInvalidScene},
		{"invalid content", filepath.Join("testdata", "invalid.toml"), errors.ErrCodeInvalidScene},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "err = %v", err)
		})
	}
}

func TestValidateCollectsEverything(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "invalid.toml"))
	require.NoError(t, err)
	s, err := Parse(data, FormatTOML)
	require.NoError(t, err)

	err = s.Validate()
	require.Error(t, err)
	for _, want := range []string{"viewport width", "gap", "bad anchor", "bad rect", "duplicate id"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateElementIDs(t *testing.T) {
	s := New(Document{
		Viewport: Size{Width: 100, Height: 100},
		Elements: []Element{{ID: " padded"}},
	})
	err := s.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidScene))
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.toml", FormatTOML, false},
		{"a.TOML", FormatTOML, false},
		{"dir/a.yaml", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"a.json", FormatJSON, false},
		{"a.txt", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"toml": FormatTOML, " YAML ": FormatYAML, "yml": FormatYAML, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestEncodeRoundTrip(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "city.yaml"))
	require.NoError(t, err)

	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			data, err := s.Encode(f)
			require.NoError(t, err)

			back, err := Parse(data, f)
			require.NoError(t, err)
			if diff := cmp.Diff(s.Doc, back.Doc); diff != "" {
				t.Errorf("document mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
