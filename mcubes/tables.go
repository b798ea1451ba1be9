// Package mcubes extracts isosurfaces from scalar fields
// using marching cubes.
package mcubes

const (
	// NumCorners is the number of corners of a cell.
	NumCorners = 8

	// NumEdges is the number of edges of a cell.
	NumEdges = 12

	// NumConfigurations is the number of distinct corner
	// classifications of a cell.
	NumConfigurations = 256

	// MaxRowLen is the length of a triangle table row,
	// including at least one Sentinel.
	MaxRowLen = 16

	// Sentinel terminates a triangle table row.
	Sentinel = -1
)

// LookupTables bundles the corner ordering of a cell with
// the case tables defined against it.
//
// The data is shared and read-only; use Tables to get it.
type LookupTables struct {
	cornerOffsets [NumCorners][3]int
	edgeCorners   [NumEdges][2]int
	edgeMasks     [NumConfigurations]uint16
	triangles     [NumConfigurations][MaxRowLen]int8
}

// Tables gets the process-wide lookup tables.
func Tables() *LookupTables {
	return &tables
}

// CornerOffset gets the (dx, dy, dz) offset of a corner
// from the cell's lowest corner.
func (l *LookupTables) CornerOffset(corner int) [3]int {
	return l.cornerOffsets[corner]
}

// EdgeCorners gets the two corners joined by an edge.
func (l *LookupTables) EdgeCorners(edge int) (int, int) {
	e := l.edgeCorners[edge]
	return e[0], e[1]
}

// EdgeMask gets the 12-bit mask of edges crossed by the
// surface for a configuration.
func (l *LookupTables) EdgeMask(c Configuration) uint16 {
	return l.edgeMasks[c]
}

// TriangleRow gets the raw triangle table row for a
// configuration, terminated by Sentinel.
func (l *LookupTables) TriangleRow(c Configuration) [MaxRowLen]int8 {
	return l.triangles[c]
}

// Triangles gets the edge triples of every triangle
// emitted for a configuration.
func (l *LookupTables) Triangles(c Configuration) [][3]int {
	var res [][3]int
	row := &l.triangles[c]
	for i := 0; row[i] != Sentinel; i += 3 {
		res = append(res, [3]int{int(row[i]), int(row[i+1]), int(row[i+2])})
	}
	return res
}

// NumTriangles counts the triangles emitted for a
// configuration.
func (l *LookupTables) NumTriangles(c Configuration) int {
	row := &l.triangles[c]
	n := 0
	for row[n] != Sentinel {
		n++
	}
	return n / 3
}

// A Configuration classifies the corners of one cell.
// Bit i is set iff corner i is strictly below the
// isovalue.
type Configuration uint8

// Classify computes the configuration of corner values
// relative to an isovalue.
func Classify(values *[NumCorners]float64, isovalue float64) Configuration {
	var c Configuration
	for i, v := range values {
		if v < isovalue {
			c |= 1 << uint(i)
		}
	}
	return c
}

// Below checks if a corner is below the isovalue.
func (c Configuration) Below(corner int) bool {
	return c&(1<<uint(corner)) != 0
}
