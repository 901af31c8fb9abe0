// Package hvut implements the heavy vehicle use tax schedule: weight-category
// brackets, tax-year proration and per-vehicle liability.
package hvut

import "strings"

// WeightCategory is a Form 2290 taxable gross weight category code.
// A is 55,000 lb; each following letter adds 1,000 lb; W is the ceiling code.
type WeightCategory string

// Categories lists every known weight category in bracket order.
// The position of a code in this list is its bracket index.
var Categories = []WeightCategory{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L",
	"M", "N", "O", "P", "Q", "R", "S", "T", "U", "V", "W",
}

var categoryIndex = func() map[WeightCategory]int {
	m := make(map[WeightCategory]int, len(Categories))
	for i, c := range Categories {
		m[c] = i
	}
	return m
}()

// ParseWeightCategory normalizes raw input ("f", " F ") to a known category.
func ParseWeightCategory(s string) (WeightCategory, bool) {
	c := WeightCategory(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := categoryIndex[c]; !ok {
		return "", false
	}
	return c, true
}

// Index returns the zero-based bracket index of the category.
func (c WeightCategory) Index() (int, bool) {
	i, ok := categoryIndex[c]
	return i, ok
}

// Valid reports whether c is a known category code.
func (c WeightCategory) Valid() bool {
	_, ok := categoryIndex[c]
	return ok
}
