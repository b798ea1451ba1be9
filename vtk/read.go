// Package vtk reads and writes scalar fields in the legacy
// VTK ASCII format, restricted to STRUCTURED_POINTS
// datasets carrying POINT_DATA FIELD arrays.
package vtk

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

const (
	encodingASCII     = "ASCII"
	datasetStructured = "STRUCTURED_POINTS"
	sectionPointData  = "POINT_DATA"
	sectionCellData   = "CELL_DATA"
	sectionField      = "FIELD"

	// ValuesPerLine is the number of values a conforming
	// producer writes per line of array data.
	ValuesPerLine = 9

	maxPrealloc = 1 << 16
)

var geometryAttributes = []string{"DIMENSIONS", "ORIGIN", "SPACING"}

// ScalarTypes lists the accepted array data types.
var ScalarTypes = []string{"double", "float"}

// ReadFile reads a scalar field from a file path.
func ReadFile(path string) (*grid.ScalarField, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, &unreadableError{err: err}
	}
	defer r.Close()
	f, err := Read(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return f, nil
}

// Read decodes a scalar field from a stream.
//
// On failure, no field is returned and the error wraps
// one of the Err* kinds in this package.
func Read(r io.Reader) (*grid.ScalarField, error) {
	p := &parser{r: bufio.NewReader(r)}
	f, err := p.parse()
	if err != nil {
		return nil, errors.Wrap(err, "read vtk")
	}
	return f, nil
}

type parser struct {
	r       *bufio.Reader
	lineNum int

	header grid.Header
	geom   grid.Geometry
}

func (p *parser) parse() (*grid.ScalarField, error) {
	steps := []func() error{
		p.parseVersion,
		p.parseTitle,
		p.parseEncoding,
		p.parseGeometry,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	arrays, err := p.parseData()
	if err != nil {
		return nil, err
	}
	f, err := grid.NewScalarField(p.header, p.geom, arrays)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedLine, err.Error())
	}
	return f, nil
}

// nextLine gets the next line that is not blank, with
// surrounding whitespace removed.
//
// At the end of the stream, it returns ok=false.
func (p *parser) nextLine() (line string, ok bool, err error) {
	for {
		s, err := p.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", false, errors.Wrapf(&unreadableError{err: err}, "line %d", p.lineNum+1)
		}
		if s == "" && err == io.EOF {
			return "", false, nil
		}
		p.lineNum++
		if s = strings.TrimSpace(s); s != "" {
			return s, true, nil
		}
		if err == io.EOF {
			return "", false, nil
		}
	}
}

// expectLine is like nextLine, but reports the end of the
// stream as the given error kind.
func (p *parser) expectLine(kind error, what string) (string, error) {
	line, ok, err := p.nextLine()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.Wrapf(kind, "end of stream, expected %s", what)
	}
	return line, nil
}

func (p *parser) parseVersion() error {
	line, err := p.expectLine(ErrMissingVersionHeader, "version header")
	if err != nil {
		return err
	}
	// # vtk DataFile Version x.y
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return errors.Wrapf(ErrMissingVersionHeader, "line %d: %q", p.lineNum, line)
	}
	p.header.Version = fields[4]
	return nil
}

func (p *parser) parseTitle() error {
	line, err := p.expectLine(ErrMissingTitleLine, "title")
	if err != nil {
		return err
	}
	p.header.Title = line
	return nil
}

func (p *parser) parseEncoding() error {
	line, err := p.expectLine(ErrUnsupportedEncoding, "encoding")
	if err != nil {
		return err
	}
	if line != encodingASCII {
		return errors.Wrapf(ErrUnsupportedEncoding, "line %d: %q", p.lineNum, line)
	}
	return nil
}

func (p *parser) parseGeometry() error {
	line, err := p.expectLine(ErrUnsupportedGeometry, "dataset")
	if err != nil {
		return err
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[1] != datasetStructured {
		return errors.Wrapf(ErrUnsupportedGeometry, "line %d: %q", p.lineNum, line)
	}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		line, err := p.expectLine(ErrMissingGeometryAttribute, "geometry attribute")
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		name := fields[0]
		if seen[name] {
			return errors.Wrapf(ErrMissingGeometryAttribute, "line %d: duplicate %s", p.lineNum, name)
		}
		seen[name] = true
		switch name {
		case "DIMENSIONS":
			dims, err := p.parseInts(fields[1:], 3)
			if err != nil {
				return err
			}
			p.geom.Dim = grid.Dimension{X: dims[0], Y: dims[1], Z: dims[2]}
			if !p.geom.Dim.Valid() {
				return errors.Wrapf(ErrMalformedLine, "line %d: invalid dimensions %v",
					p.lineNum, p.geom.Dim)
			}
		case "ORIGIN":
			c, err := p.parseCoord(fields[1:])
			if err != nil {
				return err
			}
			p.geom.Origin = c
		case "SPACING":
			c, err := p.parseCoord(fields[1:])
			if err != nil {
				return err
			}
			p.geom.Spacing = c
		case sectionPointData, sectionCellData:
			return errors.Wrapf(ErrMissingGeometryAttribute, "line %d: %s before all of %s",
				p.lineNum, name, strings.Join(geometryAttributes, ", "))
		default:
			return errors.Wrapf(ErrUnknownGeometryAttribute, "line %d: %s", p.lineNum, name)
		}
	}
	return nil
}

func (p *parser) parseData() ([]*grid.ScalarArray, error) {
	line, err := p.expectLine(ErrUnsupportedDataSection, "POINT_DATA")
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if fields[0] != sectionPointData {
		return nil, errors.Wrapf(ErrUnsupportedDataSection, "line %d: %s", p.lineNum, fields[0])
	}
	counts, err := p.parseInts(fields[1:], 1)
	if err != nil {
		return nil, err
	}
	numPoints := p.geom.Dim.Len()
	if counts[0] != numPoints {
		return nil, errors.Wrapf(ErrPointCountMismatch, "line %d: %d points for %v grid",
			p.lineNum, counts[0], p.geom.Dim)
	}

	line, err = p.expectLine(ErrTruncatedFieldData, "FIELD")
	if err != nil {
		return nil, err
	}
	fields = strings.Fields(line)
	if fields[0] != sectionField || len(fields) != 3 {
		return nil, errors.Wrapf(ErrUnsupportedDataSection, "line %d: %q", p.lineNum, line)
	}
	numArrays, err := p.parseInts(fields[2:], 1)
	if err != nil {
		return nil, err
	}
	if numArrays[0] < 1 {
		return nil, errors.Wrapf(ErrMalformedLine, "line %d: %d arrays", p.lineNum, numArrays[0])
	}

	arrays := make([]*grid.ScalarArray, 0, numArrays[0])
	for i := 0; i < numArrays[0]; i++ {
		array, err := p.parseArray(numPoints)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", fields[1])
		}
		arrays = append(arrays, array)
	}
	return arrays, nil
}

func (p *parser) parseArray(numPoints int) (*grid.ScalarArray, error) {
	line, err := p.expectLine(ErrTruncatedFieldData, "array header")
	if err != nil {
		return nil, err
	}
	// <name> <components> <count> <type>
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return nil, errors.Wrapf(ErrMalformedLine, "line %d: array header %q", p.lineNum, line)
	}
	name := fields[0]
	ints, err := p.parseInts(fields[1:3], 2)
	if err != nil {
		return nil, err
	}
	if ints[0] != 1 {
		return nil, errors.Wrapf(ErrUnsupportedFieldArity, "array %s: %d components", name, ints[0])
	}
	if ints[1] != numPoints {
		return nil, errors.Wrapf(ErrFieldCountMismatch, "array %s: %d values for %d points",
			name, ints[1], numPoints)
	}
	if !isScalarType(fields[3]) {
		return nil, errors.Wrapf(ErrUnsupportedFieldType, "array %s: %s", name, fields[3])
	}

	// The count comes from the file, so the buffer grows
	// with the values actually read.
	values := make([]float64, 0, min(numPoints, maxPrealloc))
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for len(values) < numPoints {
		line, err := p.expectLine(ErrTruncatedFieldData, "array values")
		if err != nil {
			return nil, errors.Wrapf(err, "array %s: %d of %d values", name, len(values), numPoints)
		}
		tokens := strings.Fields(line)
		if len(values)+len(tokens) > numPoints {
			return nil, errors.Wrapf(ErrFieldCountMismatch, "array %s: line %d overruns %d values",
				name, p.lineNum, numPoints)
		}
		for _, tok := range tokens {
			v, err := parseFinite(tok)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedLine, "array %s: line %d: %s", name, p.lineNum, err)
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
			values = append(values, v)
		}
	}
	return grid.NewScalarArrayRange(name, values, minVal, maxVal), nil
}

func (p *parser) parseInts(tokens []string, n int) ([]int, error) {
	if len(tokens) != n {
		return nil, errors.Wrapf(ErrMalformedLine, "line %d: expected %d values, got %d",
			p.lineNum, n, len(tokens))
	}
	res := make([]int, n)
	for i, tok := range tokens {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedLine, "line %d: %s", p.lineNum, err)
		}
		res[i] = v
	}
	return res, nil
}

func (p *parser) parseCoord(tokens []string) (model3d.Coord3D, error) {
	if len(tokens) != 3 {
		return model3d.Coord3D{}, errors.Wrapf(ErrMalformedLine, "line %d: expected 3 values, got %d",
			p.lineNum, len(tokens))
	}
	var res [3]float64
	for i, tok := range tokens {
		v, err := parseFinite(tok)
		if err != nil {
			return model3d.Coord3D{}, errors.Wrapf(ErrMalformedLine, "line %d: %s", p.lineNum, err)
		}
		res[i] = v
	}
	return model3d.Coord3D{X: res[0], Y: res[1], Z: res[2]}, nil
}

func parseFinite(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("non-finite value %q", tok)
	}
	return v, nil
}

func isScalarType(name string) bool {
	for _, t := range ScalarTypes {
		if name == t {
			return true
		}
	}
	return false
}
