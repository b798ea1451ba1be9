package mcubes

import (
	"github.com/unixpickle/model3d/model3d"
)

// A Soup is an unindexed triangle list. Every three
// consecutive positions form a triangle, and Normals holds
// one unit normal per position.
type Soup struct {
	Positions []model3d.Coord3D
	Normals   []model3d.Coord3D
}

// NumTriangles gets the number of triangles.
func (s *Soup) NumTriangles() int {
	return len(s.Positions) / 3
}

// Append adds the triangles of another soup to the end of
// this one.
func (s *Soup) Append(other *Soup) {
	s.Positions = append(s.Positions, other.Positions...)
	s.Normals = append(s.Normals, other.Normals...)
}

// Translate moves every position by an offset.
func (s *Soup) Translate(offset model3d.Coord3D) {
	for i, p := range s.Positions {
		s.Positions[i] = p.Add(offset)
	}
}

// Triangles converts the soup into model3d triangles.
//
// Each triangle is wound so that its face normal agrees
// with the average of its vertex normals, which follow
// the field gradient.
func (s *Soup) Triangles() []*model3d.Triangle {
	res := make([]*model3d.Triangle, 0, s.NumTriangles())
	for i := 0; i+2 < len(s.Positions); i += 3 {
		t := &model3d.Triangle{s.Positions[i], s.Positions[i+1], s.Positions[i+2]}
		avg := s.Normals[i].Add(s.Normals[i+1]).Add(s.Normals[i+2])
		if faceNormal(t).Dot(avg) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		res = append(res, t)
	}
	return res
}

// Mesh creates a mesh from the soup's triangles.
func (s *Soup) Mesh() *model3d.Mesh {
	return model3d.NewMeshTriangles(s.Triangles())
}

func faceNormal(t *model3d.Triangle) model3d.Coord3D {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
}
