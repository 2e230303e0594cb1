package domain

import (
	"strconv"
	"strings"
)

// Unbounded is the Max value of a multiplicity written as "*".
const Unbounded = -1

// Multiplicity bounds the number of values a property may hold.
type Multiplicity struct {
	Min int
	Max int // Unbounded for "*"
}

// One is the default "1..1" multiplicity.
var One = Multiplicity{Min: 1, Max: 1}

// NewMultiplicity validates and returns a multiplicity.
func NewMultiplicity(lower, upper int) (Multiplicity, error) {
	if lower < 0 {
		return Multiplicity{}, errorf(ErrInvalid, "Invalid min multiplicity: %d must be a non-negative integer", lower)
	}
	if upper != Unbounded && upper < 1 {
		return Multiplicity{}, errorf(ErrInvalid, "Invalid max multiplicity: %d must be greater than 0", upper)
	}
	if upper != Unbounded && upper < lower {
		return Multiplicity{}, errorf(ErrInvalid, "Invalid multiplicity: max %d is lower than min %d", upper, lower)
	}
	return Multiplicity{Min: lower, Max: upper}, nil
}

// ParseMultiplicity parses "min..max" where max may be "*".
// The shorthands "n" (n..n) and "*" (0..*) are also accepted.
func ParseMultiplicity(s string) (Multiplicity, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "*":
		return Multiplicity{Min: 0, Max: Unbounded}, nil
	case !strings.Contains(s, ".."):
		n, err := strconv.Atoi(s)
		if err != nil {
			return Multiplicity{}, errorf(ErrInvalid, "Multiplicity string '%s' must have min and max values", s)
		}
		return NewMultiplicity(n, n)
	}

	bounds := strings.Split(s, "..")
	if len(bounds) != 2 {
		return Multiplicity{}, errorf(ErrInvalid, "Multiplicity string '%s' must have min and max values", s)
	}
	lower, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return Multiplicity{}, errorf(ErrInvalid, "Multiplicity string '%s' has a non-numeric min value", s)
	}
	rawUpper := strings.TrimSpace(bounds[1])
	if rawUpper == "*" {
		return NewMultiplicity(lower, Unbounded)
	}
	upper, err := strconv.Atoi(rawUpper)
	if err != nil {
		return Multiplicity{}, errorf(ErrInvalid, "Multiplicity string '%s' has a non-numeric max value", s)
	}
	return NewMultiplicity(lower, upper)
}

// String renders the multiplicity in "min..max" form.
func (m Multiplicity) String() string {
	if m.Max == Unbounded {
		return strconv.Itoa(m.Min) + "..*"
	}
	return strconv.Itoa(m.Min) + ".." + strconv.Itoa(m.Max)
}

// IsMany reports whether more than one value is allowed.
func (m Multiplicity) IsMany() bool {
	return m.Max == Unbounded || m.Max > 1
}

// IsRequired reports whether at least one value is mandatory.
func (m Multiplicity) IsRequired() bool {
	return m.Min >= 1
}
