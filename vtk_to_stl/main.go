// Command vtk_to_stl extracts an isosurface from a legacy
// VTK structured points file and saves it as an STL file.
//
// The field must be stored as POINT_DATA FIELD arrays of
// scalars. By default, the first array is used and the
// isovalue is the middle of its range.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/heyimalaap/ScalarFieldViewer/mcubes"
	"github.com/heyimalaap/ScalarFieldViewer/vtk"
	"github.com/unixpickle/essentials"
)

func main() {
	var selection ArraySelection
	var isovalue float64
	var outputPath string
	var workers int
	var applyOrigin bool
	flag.StringVar(&selection.Name, "field", "", "name of the scalar array (overrides -index)")
	flag.IntVar(&selection.Index, "index", 0, "index of the scalar array")
	flag.Float64Var(&isovalue, "isovalue", 0, "isovalue (default: middle of the array's range)")
	flag.StringVar(&outputPath, "output", "output.stl", "output STL file")
	flag.IntVar(&workers, "workers", 0, "number of goroutines (default: GOMAXPROCS)")
	flag.BoolVar(&applyOrigin, "origin", false, "translate the surface by the dataset origin")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:", os.Args[0], "[flags] <input.vtk>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	flag.Parse()
	if len(flag.Args()) != 1 {
		flag.Usage()
	}

	field, err := vtk.ReadFile(flag.Args()[0])
	essentials.Must(err)
	LogField(field)

	array, err := selection.Find(field)
	essentials.Must(err)
	if !flagWasSet("isovalue") {
		isovalue = MidRange(field.Array(array))
	}

	log.Println("Computing gradients of", field.Array(array).Name(), "...")
	grads := grid.GradientParallel(field, array, workers)

	log.Println("Triangulating at isovalue", isovalue, "...")
	soup := mcubes.TriangulateParallel(field, array, grads, isovalue, mcubes.Options{
		Workers: workers,
	})
	if applyOrigin {
		soup.Translate(field.Origin())
	}

	log.Println("Saving", soup.NumTriangles(), "triangles to", outputPath, "...")
	essentials.Must(soup.Mesh().SaveGroupedSTL(outputPath))
}

func flagWasSet(name string) bool {
	var set bool
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
