// Package render prepares isosurface data for upload to a
// GPU: vertex buffers for meshes extracted on the CPU,
// and textures for extraction on the device.
package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/heyimalaap/ScalarFieldViewer/mcubes"
	"github.com/unixpickle/model3d/model3d"
)

// VertexStride is the number of floats per vertex in a
// buffer from VertexBuffer.
const VertexStride = 6

// Vec3 converts a coordinate to single precision.
func Vec3(c model3d.Coord3D) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}
}

// VertexBuffer interleaves the positions and normals of a
// soup as x, y, z, nx, ny, nz per vertex.
func VertexBuffer(soup *mcubes.Soup) []float32 {
	res := make([]float32, 0, len(soup.Positions)*VertexStride)
	for i, p := range soup.Positions {
		pos := Vec3(p)
		normal := Vec3(soup.Normals[i])
		res = append(res, pos[:]...)
		res = append(res, normal[:]...)
	}
	return res
}

// FieldTexture flattens an array into single-channel 3D
// texture data, x fastest.
func FieldTexture(f *grid.ScalarField, array int) []float32 {
	values := f.Array(array).Values()
	res := make([]float32, len(values))
	for i, v := range values {
		res[i] = float32(v)
	}
	return res
}

// GradientTexture flattens a vector field into RGB 3D
// texture data, x fastest.
func GradientTexture(v *grid.VectorField) []float32 {
	vecs := v.Vectors()
	res := make([]float32, 0, len(vecs)*3)
	for _, c := range vecs {
		vec := Vec3(c)
		res = append(res, vec[:]...)
	}
	return res
}

// EdgeTexture gets the edge mask table as a 256 texel
// integer texture.
func EdgeTexture() []int32 {
	tab := mcubes.Tables()
	res := make([]int32, mcubes.NumConfigurations)
	for i := range res {
		res[i] = int32(tab.EdgeMask(mcubes.Configuration(i)))
	}
	return res
}

// TriangleTexture gets the triangle table as a 16x256
// integer texture, one row per configuration.
func TriangleTexture() []int32 {
	tab := mcubes.Tables()
	res := make([]int32, 0, mcubes.NumConfigurations*mcubes.MaxRowLen)
	for i := 0; i < mcubes.NumConfigurations; i++ {
		for _, e := range tab.TriangleRow(mcubes.Configuration(i)) {
			res = append(res, int32(e))
		}
	}
	return res
}

// ModelMatrix centers the field's sample box on the
// origin of the scene.
func ModelMatrix(f *grid.ScalarField) mgl32.Mat4 {
	half := Vec3(f.Extent()).Mul(0.5)
	return mgl32.Translate3D(-half[0], -half[1], -half[2])
}
