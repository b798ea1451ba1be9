package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/heyimalaap/ScalarFieldViewer/grid"
)

// A BoundingBox is a wireframe box drawn as six quads
// sharing eight vertices.
type BoundingBox struct {
	Vertices [8]mgl32.Vec3
	Faces    [6][4]uint32
}

// NewBoundingBox creates the wireframe around a field's
// samples, centered like ModelMatrix.
func NewBoundingBox(f *grid.ScalarField) *BoundingBox {
	h := Vec3(f.Extent()).Mul(0.5)
	res := &BoundingBox{
		Faces: [6][4]uint32{
			{0, 1, 3, 2},
			{5, 4, 6, 7},
			{3, 7, 6, 2},
			{0, 4, 5, 1},
			{4, 0, 2, 6},
			{1, 5, 7, 3},
		},
	}
	// Vertex i has bit 2 for +x, bit 1 for +y, bit 0 for +z.
	for i := range res.Vertices {
		v := h.Mul(-1)
		if i&4 != 0 {
			v[0] = h[0]
		}
		if i&2 != 0 {
			v[1] = h[1]
		}
		if i&1 != 0 {
			v[2] = h[2]
		}
		res.Vertices[i] = v
	}
	return res
}

// Lines gets the box edges as vertex pairs, for line
// list rendering.
func (b *BoundingBox) Lines() [][2]mgl32.Vec3 {
	seen := map[[2]uint32]bool{}
	var res [][2]mgl32.Vec3
	for _, face := range b.Faces {
		for i, v1 := range face {
			v2 := face[(i+1)%4]
			key := [2]uint32{v1, v2}
			if v2 < v1 {
				key = [2]uint32{v2, v1}
			}
			if !seen[key] {
				seen[key] = true
				res = append(res, [2]mgl32.Vec3{b.Vertices[key[0]], b.Vertices[key[1]]})
			}
		}
	}
	return res
}
