package main

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/heyimalaap/ScalarFieldViewer/mcubes"
	"github.com/heyimalaap/ScalarFieldViewer/render"
	"github.com/unixpickle/model3d/model3d"
)

func testServer(t *testing.T) *Server {
	geom := grid.Geometry{
		Dim:     grid.Dimension{X: 8, Y: 8, Z: 8},
		Spacing: model3d.Coord3D{X: 0.5, Y: 0.5, Z: 0.5},
		Origin:  model3d.Coord3D{X: 1, Y: 2, Z: 3},
	}
	center := model3d.Coord3D{X: 3.5, Y: 3.5, Z: 3.5}
	dist := make([]float64, geom.Dim.Len())
	neg := make([]float64, geom.Dim.Len())
	for z := 0; z < geom.Dim.Z; z++ {
		for y := 0; y < geom.Dim.Y; y++ {
			for x := 0; x < geom.Dim.X; x++ {
				c := model3d.Coord3D{X: float64(x), Y: float64(y), Z: float64(z)}
				idx := geom.Dim.Index(x, y, z)
				dist[idx] = c.Dist(center)
				neg[idx] = -dist[idx]
			}
		}
	}
	f, err := grid.NewScalarField(grid.Header{Version: "3.0", Title: "ball"}, geom,
		[]*grid.ScalarArray{
			grid.NewScalarArray("dist", dist),
			grid.NewScalarArray("neg", neg),
		})
	if err != nil {
		t.Fatal(err)
	}
	return NewServer(f, 2)
}

func serve(s *Server, url string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	s.Router().ServeHTTP(w, req)
	return w
}

func TestFields(t *testing.T) {
	s := testServer(t)
	w := serve(s, "/fields")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp FieldsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Title != "ball" || resp.Dimensions != [3]int{8, 8, 8} {
		t.Errorf("unexpected header: %+v", resp)
	}
	if resp.Extent != [3]float64{3.5, 3.5, 3.5} {
		t.Errorf("extent %v", resp.Extent)
	}
	if len(resp.Arrays) != 2 {
		t.Fatalf("got %d arrays", len(resp.Arrays))
	}
	if a := resp.Arrays[1]; a.Index != 1 || a.Name != "neg" || a.Max >= 0 || a.Min != -resp.Arrays[0].Max {
		t.Errorf("unexpected array: %+v", a)
	}
}

func TestMeshJSON(t *testing.T) {
	s := testServer(t)
	w := serve(s, "/mesh?field=dist&isovalue=2.5")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp MeshResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	expected := mcubes.Triangulate(s.Field, 0, grid.Gradient(s.Field, 0), 2.5)
	if resp.Triangles == 0 || resp.Triangles != expected.NumTriangles() {
		t.Errorf("got %d triangles, want %d", resp.Triangles, expected.NumTriangles())
	}
	if len(resp.Positions) != 3*resp.Triangles || len(resp.Normals) != len(resp.Positions) {
		t.Errorf("got %d positions and %d normals", len(resp.Positions), len(resp.Normals))
	}
	if resp.Field != "dist" || resp.Isovalue != 2.5 {
		t.Errorf("unexpected response header: %s %f", resp.Field, resp.Isovalue)
	}
}

func TestMeshDefaults(t *testing.T) {
	s := testServer(t)
	w := serve(s, "/mesh?index=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp MeshResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	a := s.Field.Array(1)
	if resp.Field != "neg" || resp.Isovalue != (a.Min()+a.Max())/2 {
		t.Errorf("unexpected defaults: %s %f", resp.Field, resp.Isovalue)
	}
	if resp.Triangles == 0 {
		t.Error("empty mesh at mid-range")
	}
}

func TestMeshBinaryFormats(t *testing.T) {
	s := testServer(t)

	w := serve(s, "/mesh?field=dist&isovalue=2&format=buffer")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	count, err := strconv.Atoi(w.Header().Get("X-Vertex-Count"))
	if err != nil || count == 0 {
		t.Fatalf("bad vertex count header: %q", w.Header().Get("X-Vertex-Count"))
	}
	if w.Body.Len() != count*6*4 {
		t.Errorf("buffer has %d bytes for %d vertices", w.Body.Len(), count)
	}
	soup := mcubes.TriangulateParallel(s.Field, 0, s.Gradients(0), 2, mcubes.Options{})
	expected := render.VertexBuffer(soup)
	body := w.Body.Bytes()
	for i, v := range expected {
		actual := math.Float32frombits(binary.LittleEndian.Uint32(body[4*i:]))
		if actual != v {
			t.Fatalf("float %d = %f, want %f", i, actual, v)
		}
	}

	w = serve(s, "/mesh?field=dist&isovalue=2&format=stl")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "model/stl" {
		t.Errorf("content type %q", ct)
	}
	if w.Body.Len() <= 84 {
		t.Errorf("STL has only %d bytes", w.Body.Len())
	}
}

func TestMeshErrors(t *testing.T) {
	s := testServer(t)
	for _, url := range []string{
		"/mesh?field=pressure",
		"/mesh?index=2",
		"/mesh?index=-1",
		"/mesh?index=first",
		"/mesh?isovalue=high",
		"/mesh?format=obj",
	} {
		t.Run(url, func(t *testing.T) {
			w := serve(s, url)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status %d", w.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Message == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestSlice(t *testing.T) {
	s := testServer(t)
	w := serve(s, "/slice?field=dist&axis=yz&ratio=0.5")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp SliceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	expected, err := render.NewSlice(s.Field, 0, render.SliceYZ, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Axis != "yz" || resp.Width != 8 || resp.Height != 8 {
		t.Errorf("unexpected slice header: %s %dx%d", resp.Axis, resp.Width, resp.Height)
	}
	if len(resp.Vertices) != 64 || len(resp.Indices) != len(expected.Indices) ||
		len(resp.Colors) != 3*64 {
		t.Fatalf("got %d vertices, %d indices, %d colors", len(resp.Vertices),
			len(resp.Indices), len(resp.Colors))
	}
	for i, v := range expected.Values {
		if math.Abs(resp.Values[i]-v) > 1e-9 {
			t.Fatalf("value %d = %f, want %f", i, resp.Values[i], v)
		}
	}

	for _, url := range []string{
		"/slice?axis=zz",
		"/slice?ratio=2",
		"/slice?ratio=half",
		"/slice?field=pressure",
	} {
		if w := serve(s, url); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", url, w.Code)
		}
	}
}

func TestGradientCache(t *testing.T) {
	s := testServer(t)
	g0 := s.Gradients(0)
	if s.Gradients(0) != g0 {
		t.Error("gradients recomputed for the same array")
	}
	if s.Gradients(1) == g0 {
		t.Error("gradients shared across arrays")
	}
}
