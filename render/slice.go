package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/pkg/errors"
)

// SliceAxis names the plane of an axis-aligned slice.
type SliceAxis int

const (
	SliceXY SliceAxis = iota
	SliceYZ
	SliceXZ
)

var sliceAxisNames = [...]string{"xy", "yz", "xz"}

// ParseSliceAxis parses "xy", "yz", or "xz".
func ParseSliceAxis(name string) (SliceAxis, error) {
	for i, n := range sliceAxisNames {
		if n == name {
			return SliceAxis(i), nil
		}
	}
	return 0, errors.Errorf("unknown slice axis %q", name)
}

func (s SliceAxis) String() string {
	if s < 0 || int(s) >= len(sliceAxisNames) {
		return "invalid"
	}
	return sliceAxisNames[s]
}

// axes gets the in-plane axes (u, v) and the normal axis,
// as 0 for x, 1 for y, 2 for z.
func (s SliceAxis) axes() (u, v, normal int) {
	switch s {
	case SliceYZ:
		return 1, 2, 0
	case SliceXZ:
		return 0, 2, 1
	default:
		return 0, 1, 2
	}
}

// Slice colormap endpoints, for the minimum and maximum
// of an array.
var (
	SliceLowColor  = mgl32.Vec3{0, 0, 1}
	SliceHighColor = mgl32.Vec3{1, 0, 0}
)

// A Slice is a colored, axis-aligned plane through a
// field, with one vertex per sample of the plane.
//
// Vertices are centered like ModelMatrix. Indices hold two
// triangles per grid square. Values holds the field
// interpolated between the two nearest sample layers, and
// Colors maps each value to RGB between SliceLowColor and
// SliceHighColor over the array's range.
type Slice struct {
	Axis     SliceAxis
	Ratio    float64
	Width    int
	Height   int
	Vertices []mgl32.Vec3
	Indices  []uint32
	Values   []float64
	Colors   []float32
}

// NewSlice cuts a field at a fraction ratio in [0, 1] of
// its extent along the slice's normal axis.
func NewSlice(f *grid.ScalarField, array int, axis SliceAxis, ratio float64) (*Slice, error) {
	if axis < SliceXY || axis > SliceXZ {
		return nil, errors.Errorf("new slice: invalid axis %d", axis)
	}
	if !(ratio >= 0 && ratio <= 1) {
		return nil, errors.Errorf("new slice: ratio %f outside [0, 1]", ratio)
	}
	if array < 0 || array >= f.NumArrays() {
		return nil, errors.Errorf("new slice: array %d out of range", array)
	}

	d := f.Dim()
	dims := [3]int{d.X, d.Y, d.Z}
	spacing := f.Spacing().Array()
	half := f.Extent().Scale(0.5).Array()
	u, v, n := axis.axes()

	res := &Slice{
		Axis:   axis,
		Ratio:  ratio,
		Width:  dims[u],
		Height: dims[v],
	}

	// Layer position in samples; layers p1 and p2 bracket it.
	layer := ratio * float64(dims[n]-1)
	p1 := int(math.Floor(layer))
	if p1 > dims[n]-1 {
		p1 = dims[n] - 1
	}
	p2 := min(p1+1, dims[n]-1)
	frac := layer - float64(p1)

	offset := ratio*2*half[n] - half[n]
	a := f.Array(array)
	low, high := a.Range()

	var idx [3]int
	for j := 0; j < dims[v]; j++ {
		for i := 0; i < dims[u]; i++ {
			var pos mgl32.Vec3
			pos[u] = float32(float64(i)*spacing[u] - half[u])
			pos[v] = float32(float64(j)*spacing[v] - half[v])
			pos[n] = float32(offset)
			res.Vertices = append(res.Vertices, pos)

			idx[u], idx[v] = i, j
			idx[n] = p1
			s1 := f.Value(array, idx[0], idx[1], idx[2])
			idx[n] = p2
			s2 := f.Value(array, idx[0], idx[1], idx[2])
			value := s1*(1-frac) + s2*frac
			res.Values = append(res.Values, value)

			c := SliceColor(value, low, high)
			res.Colors = append(res.Colors, c[:]...)
		}
	}

	w := uint32(dims[u])
	for i := uint32(0); i+1 < w; i++ {
		for j := uint32(0); j+1 < uint32(dims[v]); j++ {
			res.Indices = append(res.Indices,
				w*j+i, w*(j+1)+i, w*(j+1)+i+1,
				w*j+i, w*(j+1)+i+1, w*j+i+1,
			)
		}
	}
	return res, nil
}

// SliceColor maps a value in [low, high] onto the slice
// colormap. A constant range maps to SliceLowColor.
func SliceColor(value, low, high float64) mgl32.Vec3 {
	var t float32
	if high > low {
		t = float32((value - low) / (high - low))
	}
	return SliceLowColor.Mul(1 - t).Add(SliceHighColor.Mul(t))
}
