package shader

import (
	"fmt"
	"strings"
)

// Mode selects how grid coordinates are resolved before sampling.
type Mode int

const (
	// ModeContinuous samples at fractional grid coordinates, with the
	// magnetic field read half a cell off the electric field.
	ModeContinuous Mode = iota

	// ModeSnapped rounds the grid coordinate to the nearest cell before
	// every sample, for execution targets that only index integrally.
	// The magnetic half-cell offset is dropped.
	ModeSnapped
)

func (m Mode) String() string {
	switch m {
	case ModeContinuous:
		return "continuous"
	case ModeSnapped:
		return "snapped"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "continuous" or "snapped", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continuous":
		return ModeContinuous, nil
	case "snapped":
		return ModeSnapped, nil
	default:
		return 0, fmt.Errorf("unknown shading mode %q", s)
	}
}

func (m Mode) validate() error {
	if m != ModeContinuous && m != ModeSnapped {
		return fmt.Errorf("invalid shading mode %d", int(m))
	}
	return nil
}
