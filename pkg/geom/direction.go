package geom

import (
	"fmt"
	"strings"
)

// Direction is an escape direction for a displaced element.
type Direction int

const (
	// Auto lets the resolver pick the direction with the most open space.
	Auto Direction = iota
	Top
	Bottom
	Left
	Right
)

var directionNames = [...]string{
	Auto:   "auto",
	Top:    "top",
	Bottom: "bottom",
	Left:   "left",
	Right:  "right",
}

// ParseDirection parses a direction name. The empty string means [Auto].
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "top", "up":
		return Top, nil
	case "bottom", "down":
		return Bottom, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Auto, fmt.Errorf("unknown direction %q (want top, bottom, left, right or auto)", s)
}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Horizontal reports whether d moves along the x axis.
func (d Direction) Horizontal() bool { return d == Left || d == Right }

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if d < 0 || int(d) >= len(directionNames) {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	v, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
