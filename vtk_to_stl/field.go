package main

import (
	"log"

	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/pkg/errors"
)

// ArraySelection picks one scalar array of a field, by
// name if Name is set, or else by Index.
type ArraySelection struct {
	Name  string
	Index int
}

// Find gets the index of the selected array.
func (a ArraySelection) Find(f *grid.ScalarField) (int, error) {
	if a.Name != "" {
		idx := f.ArrayIndex(a.Name)
		if idx < 0 {
			return 0, errors.Errorf("select array: no array named %q", a.Name)
		}
		return idx, nil
	}
	if a.Index < 0 || a.Index >= f.NumArrays() {
		return 0, errors.Errorf("select array: index %d out of range [0, %d)", a.Index, f.NumArrays())
	}
	return a.Index, nil
}

// MidRange gets the value halfway between the minimum and
// maximum of an array.
func MidRange(a *grid.ScalarArray) float64 {
	min, max := a.Range()
	return (min + max) / 2
}

// LogField prints the geometry and arrays of a field.
func LogField(f *grid.ScalarField) {
	h := f.Header()
	log.Printf("Loaded %q (version %s): %v samples, spacing %v, origin %v",
		h.Title, h.Version, f.Dim(), f.Spacing(), f.Origin())
	for i := 0; i < f.NumArrays(); i++ {
		a := f.Array(i)
		log.Printf("  [%d] %s: range [%g, %g]", i, a.Name(), a.Min(), a.Max())
	}
}
