package catalog

import (
	"fmt"
	"strings"
)

// FlavorAxis is one of the six taste axes every ingredient is measured on.
type FlavorAxis int

const (
	AxisSour FlavorAxis = iota
	AxisSalt
	AxisAcid
	AxisSweet
	AxisFat
	AxisUmami
)

// FlavorAxes lists the axes in their canonical order.
var FlavorAxes = [...]FlavorAxis{AxisSour, AxisSalt, AxisAcid, AxisSweet, AxisFat, AxisUmami}

var axisNames = [...]string{"SOUR", "SALT", "ACID", "SWEET", "FAT", "UMAMI"}

func (a FlavorAxis) String() string {
	if a < 0 || int(a) >= len(axisNames) {
		return fmt.Sprintf("FlavorAxis(%d)", int(a))
	}
	return axisNames[a]
}

// ParseFlavorAxis parses an axis name, case-insensitively.
func ParseFlavorAxis(s string) (FlavorAxis, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range axisNames {
		if name == upper {
			return FlavorAxis(i), nil
		}
	}
	return 0, fmt.Errorf("unknown flavor axis %q", s)
}

// FlavorVector holds a non-negative intensity per axis.
type FlavorVector [len(axisNames)]int

// Get returns the intensity on an axis.
func (v FlavorVector) Get(axis FlavorAxis) int {
	return v[axis]
}

// Add returns the axis-wise sum of two vectors.
func (v FlavorVector) Add(other FlavorVector) FlavorVector {
	for i := range v {
		v[i] += other[i]
	}
	return v
}

// Intensity is the sum over all axes.
func (v FlavorVector) Intensity() int {
	total := 0
	for _, x := range v {
		total += x
	}
	return total
}

// ActiveAxes counts the axes with a non-zero intensity.
func (v FlavorVector) ActiveAxes() int {
	n := 0
	for _, x := range v {
		if x > 0 {
			n++
		}
	}
	return n
}

// Map renders the vector keyed by axis name.
func (v FlavorVector) Map() map[string]int {
	out := make(map[string]int, len(v))
	for i, x := range v {
		out[axisNames[i]] = x
	}
	return out
}
