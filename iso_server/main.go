// Command iso_server serves isosurfaces of a legacy VTK
// structured points file over HTTP, re-triangulating the
// selected array whenever a client asks for a new
// isovalue.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/heyimalaap/ScalarFieldViewer/vtk"
	"github.com/unixpickle/essentials"
)

func main() {
	var addr string
	var workers int
	var debug bool
	flag.StringVar(&addr, "addr", ":8080", "address to listen on")
	flag.IntVar(&workers, "workers", 0, "number of goroutines per request (default: GOMAXPROCS)")
	flag.BoolVar(&debug, "debug", false, "run gin in debug mode")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:", os.Args[0], "[flags] <input.vtk>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	flag.Parse()
	if len(flag.Args()) != 1 {
		flag.Usage()
	}
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	field, err := vtk.ReadFile(flag.Args()[0])
	essentials.Must(err)
	log.Println("Loaded", field.Dim(), "samples with", field.NumArrays(), "arrays")

	server := NewServer(field, workers)
	log.Println("Listening on", addr, "...")
	essentials.Must(server.Router().Run(addr))
}
