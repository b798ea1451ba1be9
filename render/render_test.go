package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/heyimalaap/ScalarFieldViewer/mcubes"
	"github.com/unixpickle/model3d/model3d"
)

func torusField(t *testing.T) *grid.ScalarField {
	dim := grid.Dimension{X: 20, Y: 16, Z: 12}
	spacing := model3d.Coord3D{X: 0.25, Y: 0.3, Z: 0.35}
	values := make([]float64, dim.Len())
	center := model3d.Coord3D{X: 19 * 0.125, Y: 15 * 0.15, Z: 11 * 0.175}
	for z := 0; z < dim.Z; z++ {
		for y := 0; y < dim.Y; y++ {
			for x := 0; x < dim.X; x++ {
				p := model3d.Coord3D{
					X: float64(x) * spacing.X,
					Y: float64(y) * spacing.Y,
					Z: float64(z) * spacing.Z,
				}.Sub(center)
				ring := model3d.Coord3D{X: p.X, Y: p.Y}.Norm() - 1.5
				values[dim.Index(x, y, z)] = ring*ring + p.Z*p.Z
			}
		}
	}
	f, err := grid.NewScalarField(grid.Header{}, grid.Geometry{Dim: dim, Spacing: spacing},
		[]*grid.ScalarArray{grid.NewScalarArray("torus", values)})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestVertexBuffer(t *testing.T) {
	soup := &mcubes.Soup{
		Positions: []model3d.Coord3D{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}, {X: 7, Y: 8, Z: 9}},
		Normals:   []model3d.Coord3D{{X: 1}, {Y: 1}, {Z: 1}},
	}
	expected := []float32{1, 2, 3, 1, 0, 0, 4, 5, 6, 0, 1, 0, 7, 8, 9, 0, 0, 1}
	actual := VertexBuffer(soup)
	if len(actual) != len(expected) {
		t.Fatalf("got %d floats, want %d", len(actual), len(expected))
	}
	for i, v := range expected {
		if actual[i] != v {
			t.Errorf("float %d: got %f, want %f", i, actual[i], v)
		}
	}
}

func TestTextures(t *testing.T) {
	f := torusField(t)
	grads := grid.Gradient(f, 0)

	field := FieldTexture(f, 0)
	gradTex := GradientTexture(grads)
	if len(field) != f.Dim().Len() || len(gradTex) != 3*f.Dim().Len() {
		t.Fatalf("unexpected texture sizes %d, %d", len(field), len(gradTex))
	}
	idx := f.Dim().Index(3, 4, 5)
	if field[idx] != float32(f.Value(0, 3, 4, 5)) {
		t.Errorf("field texel %d = %f", idx, field[idx])
	}
	if g := Vec3(grads.At(3, 4, 5)); gradTex[idx*3] != g[0] || gradTex[idx*3+2] != g[2] {
		t.Errorf("gradient texel %d = %v", idx, gradTex[idx*3:idx*3+3])
	}

	edges := EdgeTexture()
	tris := TriangleTexture()
	if len(edges) != 256 || len(tris) != 256*16 {
		t.Fatalf("unexpected table sizes %d, %d", len(edges), len(tris))
	}
	if edges[1] != 0x109 || tris[16] != 0 || tris[17] != 8 || tris[18] != 3 || tris[19] != -1 {
		t.Errorf("unexpected table contents %#x %v", edges[1], tris[16:20])
	}
}

func TestModelMatrix(t *testing.T) {
	f := torusField(t)
	m := ModelMatrix(f)
	far := Vec3(f.Extent())
	low := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	high := m.Mul4x1(far.Vec4(1)).Vec3()
	if !low.Add(high).ApproxEqual(mgl32.Vec3{}) {
		t.Errorf("box not centered: %v, %v", low, high)
	}
}

func TestBoundingBox(t *testing.T) {
	f := torusField(t)
	box := NewBoundingBox(f)
	extent := Vec3(f.Extent())
	lines := box.Lines()
	if len(lines) != 12 {
		t.Fatalf("got %d lines, want 12", len(lines))
	}
	for _, line := range lines {
		d := line[1].Sub(line[0])
		var axes int
		for axis := 0; axis < 3; axis++ {
			if d[axis] != 0 {
				axes++
				if mgl32.Abs(d[axis]) != extent[axis] {
					t.Errorf("line %v has length %f along axis %d", line, d[axis], axis)
				}
			}
		}
		if axes != 1 {
			t.Errorf("line %v is not axis aligned", line)
		}
	}
}

func TestDeviceEvaluateMatchesTriangulate(t *testing.T) {
	f := torusField(t)
	grads := grid.Gradient(f, 0)
	input, err := NewDeviceInput(f, 0, grads)
	if err != nil {
		t.Fatal(err)
	}

	for _, isovalue := range []float64{0.25, 0.6} {
		soup := mcubes.Triangulate(f, 0, grads, isovalue)
		positions, normals := input.Evaluate(float32(isovalue))
		if len(positions) != len(soup.Positions) || len(normals) != len(soup.Normals) {
			t.Fatalf("isovalue %f: got %d vertices, want %d", isovalue, len(positions),
				len(soup.Positions))
		}
		if len(positions) == 0 {
			t.Fatalf("isovalue %f: empty surface", isovalue)
		}
		for i, p := range positions {
			if !p.ApproxEqualThreshold(Vec3(soup.Positions[i]), 1e-4) {
				t.Errorf("vertex %d: got %v, want %v", i, p, soup.Positions[i])
			}
			if !normals[i].ApproxEqualThreshold(Vec3(soup.Normals[i]), 1e-3) {
				t.Errorf("normal %d: got %v, want %v", i, normals[i], soup.Normals[i])
			}
		}
	}
}

func TestNewDeviceInputMismatch(t *testing.T) {
	f := torusField(t)
	grads, err := grid.NewVectorField(grid.Dimension{X: 1, Y: 1, Z: 1}, make([]model3d.Coord3D, 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewDeviceInput(f, 0, grads); err == nil {
		t.Error("expected error")
	}
}
