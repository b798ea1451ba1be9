package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/heyimalaap/ScalarFieldViewer/mcubes"
	"github.com/heyimalaap/ScalarFieldViewer/render"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// Server answers isosurface queries for one field.
//
// Gradients are computed once per array and cached, since
// they do not depend on the isovalue.
type Server struct {
	Field   *grid.ScalarField
	Workers int

	lock      sync.Mutex
	gradients map[int]*grid.VectorField
}

func NewServer(f *grid.ScalarField, workers int) *Server {
	return &Server{
		Field:     f,
		Workers:   workers,
		gradients: map[int]*grid.VectorField{},
	}
}

// Router creates the HTTP routes of the server.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	api := r.Group("/")
	{
		api.GET("/fields", s.Fields)
		api.GET("/mesh", s.Mesh)
		api.GET("/slice", s.Slice)
	}
	return r
}

type ArrayInfo struct {
	Index int     `json:"index"`
	Name  string  `json:"name"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

type FieldsResponse struct {
	Version    string      `json:"version"`
	Title      string      `json:"title"`
	Dimensions [3]int      `json:"dimensions"`
	Spacing    [3]float64  `json:"spacing"`
	Origin     [3]float64  `json:"origin"`
	Extent     [3]float64  `json:"extent"`
	Arrays     []ArrayInfo `json:"arrays"`
}

type MeshResponse struct {
	Field     string       `json:"field"`
	Isovalue  float64      `json:"isovalue"`
	Triangles int          `json:"triangles"`
	Positions [][3]float64 `json:"positions"`
	Normals   [][3]float64 `json:"normals"`
}

type SliceResponse struct {
	Field    string       `json:"field"`
	Axis     string       `json:"axis"`
	Ratio    float64      `json:"ratio"`
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Vertices [][3]float32 `json:"vertices"`
	Indices  []uint32     `json:"indices"`
	Values   []float64    `json:"values"`
	Colors   []float32    `json:"colors"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

// Fields describes the geometry and arrays of the field.
func (s *Server) Fields(c *gin.Context) {
	f := s.Field
	h := f.Header()
	d := f.Dim()
	resp := FieldsResponse{
		Version:    h.Version,
		Title:      h.Title,
		Dimensions: [3]int{d.X, d.Y, d.Z},
		Spacing:    f.Spacing().Array(),
		Origin:     f.Origin().Array(),
		Extent:     f.Extent().Array(),
	}
	for i := 0; i < f.NumArrays(); i++ {
		a := f.Array(i)
		resp.Arrays = append(resp.Arrays, ArrayInfo{
			Index: i,
			Name:  a.Name(),
			Min:   a.Min(),
			Max:   a.Max(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Mesh triangulates an array at an isovalue.
//
// Query parameters: field (array name) or index, isovalue
// (default: middle of the array's range), and format, one
// of json, stl, or buffer (interleaved float32 position
// and normal data).
func (s *Server) Mesh(c *gin.Context) {
	array, err := s.arrayIndex(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	}
	a := s.Field.Array(array)
	isovalue := (a.Min() + a.Max()) / 2
	if v, ok := c.GetQuery("isovalue"); ok {
		isovalue, err = strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid isovalue: " + v})
			return
		}
	}

	soup := mcubes.TriangulateParallel(s.Field, array, s.Gradients(array), isovalue,
		mcubes.Options{Workers: s.Workers})

	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		resp := MeshResponse{
			Field:     a.Name(),
			Isovalue:  isovalue,
			Triangles: soup.NumTriangles(),
			Positions: coordArrays(soup.Positions),
			Normals:   coordArrays(soup.Normals),
		}
		c.JSON(http.StatusOK, resp)
	case "stl":
		var buf bytes.Buffer
		if err := model3d.WriteSTL(&buf, soup.Triangles()); err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Message: err.Error()})
			return
		}
		c.Data(http.StatusOK, "model/stl", buf.Bytes())
	case "buffer":
		c.Header("X-Vertex-Count", strconv.Itoa(len(soup.Positions)))
		c.Data(http.StatusOK, "application/octet-stream", encodeFloats(render.VertexBuffer(soup)))
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "unknown format: " + format})
	}
}

// Slice cuts an axis-aligned colored plane through an
// array.
//
// Query parameters: field or index, axis (xy, yz, or xz;
// default xy), and ratio in [0, 1] (default 0.5).
func (s *Server) Slice(c *gin.Context) {
	array, err := s.arrayIndex(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	}
	axis, err := render.ParseSliceAxis(c.DefaultQuery("axis", "xy"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	}
	ratio, err := strconv.ParseFloat(c.DefaultQuery("ratio", "0.5"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid ratio: " + c.Query("ratio")})
		return
	}
	slice, err := render.NewSlice(s.Field, array, axis, ratio)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	}
	resp := SliceResponse{
		Field:    s.Field.Array(array).Name(),
		Axis:     axis.String(),
		Ratio:    ratio,
		Width:    slice.Width,
		Height:   slice.Height,
		Vertices: make([][3]float32, len(slice.Vertices)),
		Indices:  slice.Indices,
		Values:   slice.Values,
		Colors:   slice.Colors,
	}
	for i, v := range slice.Vertices {
		resp.Vertices[i] = v
	}
	c.JSON(http.StatusOK, resp)
}

// Gradients gets the cached gradients of an array,
// computing them on first use.
func (s *Server) Gradients(array int) *grid.VectorField {
	s.lock.Lock()
	defer s.lock.Unlock()
	if g, ok := s.gradients[array]; ok {
		return g
	}
	g := grid.GradientParallel(s.Field, array, s.Workers)
	s.gradients[array] = g
	return g
}

func (s *Server) arrayIndex(c *gin.Context) (int, error) {
	if name := c.Query("field"); name != "" {
		idx := s.Field.ArrayIndex(name)
		if idx < 0 {
			return 0, errors.Errorf("no array named %q", name)
		}
		return idx, nil
	}
	idx, err := strconv.Atoi(c.DefaultQuery("index", "0"))
	if err != nil {
		return 0, errors.Wrap(err, "invalid index")
	}
	if idx < 0 || idx >= s.Field.NumArrays() {
		return 0, errors.Errorf("index %d out of range", idx)
	}
	return idx, nil
}

// encodeFloats packs float32s in little-endian order.
func encodeFloats(values []float32) []byte {
	res := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(res[4*i:], math.Float32bits(v))
	}
	return res
}

func coordArrays(coords []model3d.Coord3D) [][3]float64 {
	res := make([][3]float64, len(coords))
	for i, c := range coords {
		res[i] = c.Array()
	}
	return res
}
