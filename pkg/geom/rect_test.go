package geom

import "testing"

func TestNewRect(t *testing.T) {
	r := NewRect(5, 10, 20, 15)

	if r.Left != 5 || r.Top != 10 {
		t.Errorf("NewRect() origin = (%v, %v), want (5, 10)", r.Left, r.Top)
	}
	if r.Right != 25 || r.Bottom != 25 {
		t.Errorf("NewRect() far corner = (%v, %v), want (25, 25)", r.Right, r.Bottom)
	}
	if r.Width() != 20 || r.Height() != 15 {
		t.Errorf("NewRect() size = %vx%v, want 20x15", r.Width(), r.Height())
	}
}

func TestRectIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{name: "standard", rect: NewRect(0, 0, 10, 5), want: false},
		{name: "zero width", rect: NewRect(0, 0, 0, 10), want: true},
		{name: "zero height", rect: NewRect(0, 0, 10, 0), want: true},
		{name: "inverted", rect: Rect{Left: 10, Right: 0, Top: 0, Bottom: 10}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectTranslate(t *testing.T) {
	r := NewRect(10, 20, 30, 40).Translate(-5, 7)
	want := NewRect(5, 27, 30, 40)
	if r != want {
		t.Errorf("Translate() = %v, want %v", r, want)
	}
	if got := NewRect(10, 20, 30, 40).Offset(Offset{DX: -5, DY: 7}); got != want {
		t.Errorf("Offset() = %v, want %v", got, want)
	}
}

func TestRectIntersect(t *testing.T) {
	tests := map[string]struct {
		a, b Rect
		want Rect
	}{
		"partial": {
			a:    NewRect(0, 0, 10, 10),
			b:    NewRect(5, 5, 10, 10),
			want: NewRect(5, 5, 5, 5),
		},
		"contained": {
			a:    NewRect(0, 0, 20, 20),
			b:    NewRect(5, 5, 5, 5),
			want: NewRect(5, 5, 5, 5),
		},
		"touching": {
			a:    NewRect(0, 0, 10, 10),
			b:    NewRect(10, 0, 10, 10),
			want: Rect{},
		},
		"disjoint": {
			a:    NewRect(0, 0, 10, 10),
			b:    NewRect(50, 50, 10, 10),
			want: Rect{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Errorf("Intersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := map[string]struct {
		a, b Rect
		gap  float64
		want bool
	}{
		"intersecting": {
			a: NewRect(0, 0, 100, 100), b: NewRect(50, 50, 100, 100), gap: 0, want: true,
		},
		"touching without gap": {
			a: NewRect(0, 0, 100, 100), b: NewRect(100, 0, 100, 100), gap: 0, want: false,
		},
		"exactly gap apart": {
			a: NewRect(0, 0, 100, 100), b: NewRect(116, 0, 100, 100), gap: 16, want: false,
		},
		"inside gap horizontally": {
			a: NewRect(0, 0, 100, 100), b: NewRect(110, 0, 100, 100), gap: 16, want: true,
		},
		"inside gap vertically": {
			a: NewRect(0, 0, 100, 100), b: NewRect(0, 108, 100, 100), gap: 16, want: true,
		},
		"diagonal clear on one axis": {
			a: NewRect(0, 0, 100, 100), b: NewRect(110, 200, 100, 100), gap: 16, want: false,
		},
		"zero size point inside": {
			a: NewRect(50, 50, 0, 0), b: NewRect(0, 0, 100, 100), gap: 0, want: true,
		},
		"zero size point on edge": {
			a: NewRect(100, 50, 0, 0), b: NewRect(0, 0, 100, 100), gap: 0, want: false,
		},
		"negative gap treated as zero": {
			a: NewRect(0, 0, 100, 100), b: NewRect(100, 0, 100, 100), gap: -10, want: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b, tt.gap); got != tt.want {
				t.Errorf("Overlaps(a, b) = %v, want %v", got, tt.want)
			}
			if got := Overlaps(tt.b, tt.a, tt.gap); got != tt.want {
				t.Errorf("Overlaps(b, a) = %v, want %v (must be symmetric)", got, tt.want)
			}
		})
	}
}

func TestViewportBounds(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	want := Rect{Left: 16, Top: 16, Right: 784, Bottom: 584}
	if got := vp.Bounds(16); got != want {
		t.Errorf("Bounds(16) = %v, want %v", got, want)
	}
	if !vp.Bounds(16).ContainsRect(NewRect(16, 16, 768, 568)) {
		t.Error("Bounds should contain a rect touching every gapped edge")
	}
}

func TestOffsetAdd(t *testing.T) {
	got := Offset{DX: 3, DY: -4}.Add(Offset{DX: -3, DY: 10})
	if got != (Offset{DX: 0, DY: 6}) {
		t.Errorf("Add() = %+v, want {0 6}", got)
	}
	if got.IsZero() {
		t.Error("IsZero() = true for non-zero offset")
	}
	if !(Offset{}).IsZero() {
		t.Error("IsZero() = false for zero offset")
	}
}
