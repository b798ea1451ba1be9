package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/heyimalaap/ScalarFieldViewer/mcubes"
	"github.com/pkg/errors"
)

// DeviceInput is the data uploaded for extraction on the
// device: the field and gradient textures, the lookup
// table textures, and the uniforms describing the grid.
type DeviceInput struct {
	Dim       [3]int
	Spacing   mgl32.Vec3
	Field     []float32
	Gradients []float32
	Edges     []int32
	Triangles []int32
}

// NewDeviceInput packs an array and its gradients.
func NewDeviceInput(f *grid.ScalarField, array int, grads *grid.VectorField) (*DeviceInput, error) {
	if f.Dim() != grads.Dim() {
		return nil, errors.Errorf("device input: gradient dimensions %v do not match field %v",
			grads.Dim(), f.Dim())
	}
	d := f.Dim()
	return &DeviceInput{
		Dim:       [3]int{d.X, d.Y, d.Z},
		Spacing:   Vec3(f.Spacing()),
		Field:     FieldTexture(f, array),
		Gradients: GradientTexture(grads),
		Edges:     EdgeTexture(),
		Triangles: TriangleTexture(),
	}, nil
}

// Evaluate runs the per-cell evaluator on the CPU, reading
// only the packed textures, and returns the emitted
// positions and normals in cell order.
//
// Up to single precision rounding, the result matches
// mcubes.Triangulate on the source field.
func (d *DeviceInput) Evaluate(isovalue float32) (positions, normals []mgl32.Vec3) {
	for x := 0; x < d.Dim[0]-1; x++ {
		for y := 0; y < d.Dim[1]-1; y++ {
			for z := 0; z < d.Dim[2]-1; z++ {
				positions, normals = d.evaluateCell(positions, normals, x, y, z, isovalue)
			}
		}
	}
	return
}

func (d *DeviceInput) evaluateCell(positions, normals []mgl32.Vec3, x, y, z int,
	isovalue float32) ([]mgl32.Vec3, []mgl32.Vec3) {
	tab := mcubes.Tables()

	var values [mcubes.NumCorners]float32
	var grads, corners [mcubes.NumCorners]mgl32.Vec3
	config := 0
	for i := range values {
		off := tab.CornerOffset(i)
		cx, cy, cz := x+off[0], y+off[1], z+off[2]
		idx := cx + d.Dim[0]*(cy+cz*d.Dim[1])
		values[i] = d.Field[idx]
		grads[i] = mgl32.Vec3{d.Gradients[idx*3], d.Gradients[idx*3+1], d.Gradients[idx*3+2]}
		corners[i] = mgl32.Vec3{
			float32(cx) * d.Spacing[0],
			float32(cy) * d.Spacing[1],
			float32(cz) * d.Spacing[2],
		}
		if values[i] < isovalue {
			config |= 1 << uint(i)
		}
	}

	mask := d.Edges[config]
	if mask == 0 {
		return positions, normals
	}

	var edgePos, edgeNormal [mcubes.NumEdges]mgl32.Vec3
	for edge := 0; edge < mcubes.NumEdges; edge++ {
		if mask&(1<<uint(edge)) == 0 {
			continue
		}
		v1, v2 := tab.EdgeCorners(edge)
		t := float32(mcubes.EdgeParameter(float64(values[v1]), float64(values[v2]), float64(isovalue)))
		edgePos[edge] = corners[v1].Mul(1 - t).Add(corners[v2].Mul(t))
		n := grads[v1].Mul(1 - t).Add(grads[v2].Mul(t))
		if n.Len() == 0 {
			n = mgl32.Vec3{0, 0, 1}
		} else {
			n = n.Normalize()
		}
		edgeNormal[edge] = n
	}

	row := d.Triangles[config*mcubes.MaxRowLen : (config+1)*mcubes.MaxRowLen]
	for i := 0; row[i] != mcubes.Sentinel; i++ {
		positions = append(positions, edgePos[row[i]])
		normals = append(normals, edgeNormal[row[i]])
	}
	return positions, normals
}
