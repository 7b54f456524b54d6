package render

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/emfield/shader"
)

// Backend names an execution strategy for frame rendering.
type Backend int

const (
	// BackendScalar shades pixel by pixel and can sample at fractional
	// grid coordinates.
	BackendScalar Backend = iota

	// BackendIndexed models a data-parallel target that can only index
	// fields integrally.
	BackendIndexed
)

func (b Backend) String() string {
	switch b {
	case BackendScalar:
		return "scalar"
	case BackendIndexed:
		return "indexed"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend accepts "scalar" or "indexed".
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalar":
		return BackendScalar, nil
	case "indexed":
		return BackendIndexed, nil
	default:
		return 0, fmt.Errorf("unknown backend %q", s)
	}
}

// SupportsFractionalSampling reports whether the backend can read fields at
// non-integral coordinates.
func (b Backend) SupportsFractionalSampling() bool {
	return b == BackendScalar
}

// SelectMode picks the shading mode for a frame. An override of "" or "auto"
// derives the mode from the backend; otherwise the override is parsed.
// Requesting continuous shading on a backend without fractional sampling is
// an error.
func SelectMode(b Backend, override string) (shader.Mode, error) {
	o := strings.ToLower(strings.TrimSpace(override))
	if o == "" || o == "auto" {
		if b.SupportsFractionalSampling() {
			return shader.ModeContinuous, nil
		}
		return shader.ModeSnapped, nil
	}
	m, err := shader.ParseMode(o)
	if err != nil {
		return 0, err
	}
	if m == shader.ModeContinuous && !b.SupportsFractionalSampling() {
		return 0, fmt.Errorf("backend %s cannot sample fractional coordinates", b)
	}
	return m, nil
}
