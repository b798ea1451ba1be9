package vtk

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

const cubeFile = `# vtk DataFile Version 3.0
A 2x2x3 test volume
ASCII
DATASET STRUCTURED_POINTS
DIMENSIONS 2 2 3
ORIGIN -1 0 2.5
SPACING 0.5 1 2

POINT_DATA 12
FIELD FieldData 2
density 1 12 double
0 1 2 3 4 5 6 7 8
9 10 11
temperature 1 12 double
-3.5 2 2 2 2 2 2 2 2

2 2 7.25
`

func TestReadValid(t *testing.T) {
	f, err := Read(strings.NewReader(cubeFile))
	if err != nil {
		t.Fatal(err)
	}
	h := f.Header()
	if h.Version != "3.0" || h.Title != "A 2x2x3 test volume" {
		t.Errorf("unexpected header %+v", h)
	}
	g := f.Geometry()
	if g.Dim != (grid.Dimension{X: 2, Y: 2, Z: 3}) {
		t.Errorf("Dim = %v", g.Dim)
	}
	if g.Origin != (model3d.Coord3D{X: -1, Y: 0, Z: 2.5}) {
		t.Errorf("Origin = %v", g.Origin)
	}
	if g.Spacing != (model3d.Coord3D{X: 0.5, Y: 1, Z: 2}) {
		t.Errorf("Spacing = %v", g.Spacing)
	}
	if f.NumArrays() != 2 {
		t.Fatalf("NumArrays() = %d, want 2", f.NumArrays())
	}

	tests := []struct {
		name     string
		min, max float64
		at       float64
	}{
		{"density", 0, 11, 7},
		{"temperature", -3.5, 7.25, 2},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := f.Array(i)
			if a.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", a.Name(), tt.name)
			}
			if min, max := a.Range(); min != tt.min || max != tt.max {
				t.Errorf("Range() = (%f, %f), want (%f, %f)", min, max, tt.min, tt.max)
			}
			if v := f.Value(i, 1, 1, 1); v != tt.at {
				t.Errorf("Value(1, 1, 1) = %f, want %f", v, tt.at)
			}
		})
	}
}

func TestReadGeometryOrder(t *testing.T) {
	data := strings.Replace(cubeFile, "DIMENSIONS 2 2 3\nORIGIN -1 0 2.5\nSPACING 0.5 1 2",
		"SPACING 0.5 1 2\nDIMENSIONS 2 2 3\nORIGIN -1 0 2.5", 1)
	f, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if f.Dim() != (grid.Dimension{X: 2, Y: 2, Z: 3}) {
		t.Errorf("Dim() = %v", f.Dim())
	}
}

func TestReadRowWidths(t *testing.T) {
	// Rows of other widths are accepted as long as the
	// total count is honoured.
	data := strings.Replace(cubeFile, "0 1 2 3 4 5 6 7 8\n9 10 11", "0 1 2 3\n4 5 6 7\r\n8 9 10 11", 1)
	f, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range f.Array(0).Values() {
		if v != float64(i) {
			t.Errorf("value %d = %f", i, v)
		}
	}
}

// hugeGridFile creates a single-array file whose header
// declares dims and count, followed by body.
func hugeGridFile(dims, count, body string) string {
	return "# vtk DataFile Version 3.0\nhuge\nASCII\nDATASET STRUCTURED_POINTS\n" +
		"DIMENSIONS " + dims + "\nORIGIN 0 0 0\nSPACING 1 1 1\n" +
		"POINT_DATA " + count + "\nFIELD FieldData 1\n" +
		"a 1 " + count + " double\n" + body
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind error
	}{
		{"empty", "", ErrMissingVersionHeader},
		{"short header", strings.Replace(cubeFile, "# vtk DataFile Version 3.0", "# vtk", 1),
			ErrMissingVersionHeader},
		{"no title", "# vtk DataFile Version 3.0\n", ErrMissingTitleLine},
		{"binary", strings.Replace(cubeFile, "ASCII", "BINARY", 1), ErrUnsupportedEncoding},
		{"no ascii", strings.Replace(cubeFile, "ASCII\n", "", 1), ErrUnsupportedEncoding},
		{"grid", strings.Replace(cubeFile, "STRUCTURED_POINTS", "STRUCTURED_GRID", 1),
			ErrUnsupportedGeometry},
		{"missing spacing", strings.Replace(cubeFile, "SPACING 0.5 1 2\n", "", 1),
			ErrMissingGeometryAttribute},
		{"duplicate origin", strings.Replace(cubeFile, "SPACING 0.5 1 2", "ORIGIN 0 0 0", 1),
			ErrMissingGeometryAttribute},
		{"cell data", strings.Replace(cubeFile, "POINT_DATA 12", "CELL_DATA 2", 1),
			ErrUnsupportedDataSection},
		{"point count", strings.Replace(cubeFile, "POINT_DATA 12", "POINT_DATA 13", 1),
			ErrPointCountMismatch},
		{"scalars", strings.Replace(cubeFile, "FIELD FieldData 2", "SCALARS density double 1", 1),
			ErrUnsupportedDataSection},
		{"arity", strings.Replace(cubeFile, "density 1 12 double", "density 3 12 double", 1),
			ErrUnsupportedFieldArity},
		{"count", strings.Replace(cubeFile, "density 1 12 double", "density 1 11 double", 1),
			ErrFieldCountMismatch},
		{"type", strings.Replace(cubeFile, "density 1 12 double", "density 1 12 int", 1),
			ErrUnsupportedFieldType},
		{"overrun", strings.Replace(cubeFile, "9 10 11", "9 10 11 12", 1), ErrFieldCountMismatch},
		{"truncated", cubeFile[:strings.Index(cubeFile, "2 2 7.25")], ErrTruncatedFieldData},
		{"missing array", strings.Replace(cubeFile, "FieldData 2", "FieldData 3", 1),
			ErrTruncatedFieldData},
		{"bad number", strings.Replace(cubeFile, "9 10 11", "9 ten 11", 1), ErrMalformedLine},
		{"bad dims", strings.Replace(cubeFile, "DIMENSIONS 2 2 3", "DIMENSIONS 2 2", 1),
			ErrMalformedLine},
		{"zero spacing", strings.Replace(cubeFile, "SPACING 0.5 1 2", "SPACING 0 1 2", 1),
			ErrMalformedLine},
		{"unknown attribute", strings.Replace(cubeFile, "ORIGIN -1 0 2.5", "ASPECT_RATIO 1 1 1", 1),
			ErrUnknownGeometryAttribute},
		{"overflowing dims", hugeGridFile("4294967296 4294967296 1", "0", ""), ErrMalformedLine},
		{"huge count", hugeGridFile("1000000 1000000 1000", "1000000000000000", "1 2 3\n"),
			ErrTruncatedFieldData},
		{"nan value", strings.Replace(cubeFile, "9 10 11", "9 nan 11", 1), ErrMalformedLine},
		{"inf value", strings.Replace(cubeFile, "-3.5 2", "-Inf 2", 1), ErrMalformedLine},
		{"nan spacing", strings.Replace(cubeFile, "SPACING 0.5 1 2", "SPACING 0.5 NaN 2", 1),
			ErrMalformedLine},
		{"inf origin", strings.Replace(cubeFile, "ORIGIN -1 0 2.5", "ORIGIN -1 +inf 2.5", 1),
			ErrMalformedLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Read(strings.NewReader(tt.data))
			if f != nil {
				t.Error("expected no field")
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("error %q is not %q", err, tt.kind)
			}
			if errors.Cause(err) != tt.kind {
				t.Errorf("Cause(%q) = %q, want %q", err, errors.Cause(err), tt.kind)
			}
		})
	}
}

func TestReadUnreadable(t *testing.T) {
	diskErr := errors.New("disk on fire")
	_, err := Read(iotest.ErrReader(diskErr))
	if !errors.Is(err, ErrFileUnreadable) || !errors.Is(err, diskErr) {
		t.Errorf("unexpected error %v", err)
	}
	if errors.Cause(err) != ErrFileUnreadable {
		t.Errorf("Cause(%q) = %q", err, errors.Cause(err))
	}

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.vtk"))
	if !errors.Is(err, ErrFileUnreadable) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error %v", err)
	}
	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) || filepath.Base(pathErr.Path) != "missing.vtk" {
		t.Errorf("error %v does not carry the path", err)
	}
}

func TestWriteRead(t *testing.T) {
	orig, err := Read(strings.NewReader(cubeFile))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, orig); err != nil {
		t.Fatal(err)
	}
	for i, line := range strings.Split(buf.String(), "\n") {
		if n := len(strings.Fields(line)); n > ValuesPerLine {
			t.Errorf("line %d has %d tokens", i, n)
		}
	}

	path := filepath.Join(t.TempDir(), "out.vtk")
	if err := WriteFile(path, orig); err != nil {
		t.Fatal(err)
	}
	actual, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if actual.Header() != orig.Header() || actual.Geometry() != orig.Geometry() {
		t.Errorf("header/geometry mismatch: %+v %+v", actual.Header(), actual.Geometry())
	}
	for i := 0; i < orig.NumArrays(); i++ {
		expected := orig.Array(i).Values()
		for j, v := range actual.Array(i).Values() {
			if v != expected[j] {
				t.Errorf("array %d value %d: got %f, want %f", i, j, v, expected[j])
			}
		}
	}
}

func TestWriteInvalidName(t *testing.T) {
	f, err := grid.NewScalarField(grid.Header{}, grid.Geometry{
		Dim:     grid.Dimension{X: 1, Y: 1, Z: 1},
		Spacing: model3d.Coord3D{X: 1, Y: 1, Z: 1},
	}, []*grid.ScalarArray{grid.NewScalarArray("two words", []float64{1})})
	if err != nil {
		t.Fatal(err)
	}
	if err := Write(&bytes.Buffer{}, f); err == nil {
		t.Error("expected error")
	}
}
