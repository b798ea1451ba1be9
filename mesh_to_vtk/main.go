// Command mesh_to_vtk samples the occupancy of a triangle
// mesh on a regular grid and saves it as a legacy VTK
// structured points file.
//
// Each sample is the fraction of a small sub-grid around
// the sample point that lies inside the mesh, so the 0.5
// isosurface of the output approximates the mesh surface.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/heyimalaap/ScalarFieldViewer/vtk"
	"github.com/pkg/errors"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
)

func main() {
	var gridSize int
	var subsamples int
	var padding int
	var arrayName string
	flag.IntVar(&gridSize, "grid-size", 64, "number of samples along the longest axis")
	flag.IntVar(&subsamples, "samples", 2, "sub-samples per axis for each sample")
	flag.IntVar(&padding, "padding", 2, "samples of empty space around the mesh")
	flag.StringVar(&arrayName, "name", "occupancy", "name of the output array")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:", os.Args[0], "[flags] <input.off|input.stl> <output.vtk>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	flag.Parse()
	if len(flag.Args()) != 2 || gridSize < 2 || subsamples < 1 || padding < 0 {
		flag.Usage()
	}
	inPath, outPath := flag.Args()[0], flag.Args()[1]

	log.Println("Reading", inPath, "...")
	mesh, err := ReadMesh(inPath)
	essentials.Must(err)

	solid := NewMeshSolid(mesh)
	sampler := NewOccupancySampler(solid, gridSize, padding, subsamples)
	log.Println("Sampling", sampler.Lattice.Dim, "grid ...")
	field, err := sampler.Field(arrayName, "occupancy of "+filepath.Base(inPath))
	essentials.Must(err)

	log.Println("Writing", outPath, "...")
	essentials.Must(vtk.WriteFile(outPath, field))
}

// ReadMesh reads an OFF or STL file, based on the file
// extension.
func ReadMesh(path string) (*model3d.Mesh, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var triangles []*model3d.Triangle
	switch strings.ToLower(filepath.Ext(path)) {
	case ".off":
		triangles, err = model3d.ReadOFF(r)
	case ".stl":
		triangles, err = model3d.ReadSTL(r)
	default:
		return nil, errors.Errorf("read mesh: unknown extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, errors.Wrap(err, "read mesh")
	}
	if len(triangles) == 0 {
		return nil, errors.New("read mesh: no triangles")
	}
	return model3d.NewMeshTriangles(triangles), nil
}
