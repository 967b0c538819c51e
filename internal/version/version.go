// Package version implements the four-component build counter stamped into
// every compiled artifact.
//
// A Version is read as a mixed-radix integer, radix 20 per component, most
// significant component first. Incrementing carries into higher components;
// incrementing the largest representable version saturates at 19.19.19.19
// and reports diag.ErrVersionOverflow.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/dllforge/internal/diag"
)

const (
	// Components is the number of version components.
	Components = 4
	// Radix bounds each component to [0, Radix).
	Radix = 20
	// Max is the largest scalar a Version can hold.
	Max = Radix*Radix*Radix*Radix - 1
)

// Version is an ordered tuple of components, most significant first.
type Version [Components]int

// Validate checks that every component lies in [0, Radix).
func (v Version) Validate() error {
	for i, c := range v {
		if c < 0 || c >= Radix {
			return fmt.Errorf("version component %d is %d, must be in [0,%d)", i, c, Radix)
		}
	}
	return nil
}

// Scalar flattens v into a single integer.
func (v Version) Scalar() int {
	n := 0
	for _, c := range v {
		n = n*Radix + c
	}
	return n
}

// FromScalar expands n back into components. Callers must keep n in [0, Max].
func FromScalar(n int) Version {
	var v Version
	for i := Components - 1; i >= 0; i-- {
		v[i] = n % Radix
		n /= Radix
	}
	return v
}

// Increment returns the next version. At Max it returns Max together with
// diag.ErrVersionOverflow.
func Increment(v Version) (Version, error) {
	if err := v.Validate(); err != nil {
		return v, err
	}
	n := v.Scalar() + 1
	if n > Max {
		return FromScalar(Max), fmt.Errorf("incrementing %s: %w", v, diag.ErrVersionOverflow)
	}
	return FromScalar(n), nil
}

// String renders v as dotted components, e.g. "0.0.1.0".
func (v Version) String() string {
	parts := make([]string, Components)
	for i, c := range v {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ".")
}

// Parse reads a dotted version such as "1.2.3.4". Missing trailing
// components are zero.
func Parse(s string) (Version, error) {
	var v Version
	s = strings.TrimSpace(s)
	if s == "" {
		return v, fmt.Errorf("empty version")
	}
	parts := strings.Split(s, ".")
	if len(parts) > Components {
		return v, fmt.Errorf("version %q has %d components, want at most %d", s, len(parts), Components)
	}
	for i, p := range parts {
		c, err := strconv.Atoi(p)
		if err != nil {
			return v, fmt.Errorf("version %q: component %d: %w", s, i, err)
		}
		v[i] = c
	}
	if err := v.Validate(); err != nil {
		return v, fmt.Errorf("version %q: %w", s, err)
	}
	return v, nil
}

// FromSlice converts a decoded list of components. Fewer than Components
// entries are padded with zeros.
func FromSlice(components []int) (Version, error) {
	var v Version
	if len(components) > Components {
		return v, fmt.Errorf("version has %d components, want at most %d", len(components), Components)
	}
	copy(v[:], components)
	if err := v.Validate(); err != nil {
		return v, err
	}
	return v, nil
}
