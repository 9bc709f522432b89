// Package depth orders accepted shapes for drawing.
package depth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Order is a draw order. Later items are drawn on top.
type Order string

// Draw orders. The labels match the settings form the values come from.
const (
	None Order = "no"
	// Ascending draws small shapes first, so big shapes end up in front.
	Ascending Order = "big shapes in front"
	// Descending draws big shapes first, so small shapes end up in front.
	Descending Order = "small shapes in front"
)

// ErrUnknownOrder is returned by ParseOrder for unrecognized names.
var ErrUnknownOrder = errors.New("depth: unknown order")

// ParseOrder accepts the setting labels and the names none, ascending and
// descending.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "no", "none":
		return None, nil
	case string(Ascending), "ascending":
		return Ascending, nil
	case string(Descending), "descending":
		return Descending, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOrder, s)
	}
}

// Sizer is anything with a depth metric.
type Sizer interface {
	Size() float64
}

// Sort reorders items in place by Size. Equal sizes keep their relative
// order. None leaves items untouched.
func Sort[T Sizer](items []T, order Order) {
	switch order {
	case Ascending:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Size() < items[j].Size() })
	case Descending:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Size() > items[j].Size() })
	}
}

// Modifier maps size from [lo, hi] onto the parallax factor of its layer:
// [0.1, 1] for Ascending, [1, 0.1] for Descending and 1 otherwise.
func Modifier(order Order, size, lo, hi float64) float64 {
	switch order {
	case Ascending:
		return Map(size, lo, hi, 0.1, 1)
	case Descending:
		return Map(size, lo, hi, 1, 0.1)
	default:
		return 1
	}
}

// Map linearly maps v from [inLo, inHi] onto [outLo, outHi] without
// clamping. A zero input range yields outLo.
func Map(v, inLo, inHi, outLo, outHi float64) float64 {
	if inHi == inLo {
		return outLo
	}
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}
