package vtk

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

const (
	defaultVersion   = "3.0"
	defaultTitle     = "scalar field"
	defaultFieldName = "FieldData"
)

// WriteFile writes a scalar field to a file path.
func WriteFile(path string, f *grid.ScalarField) (err error) {
	w, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "write vtk")
	}
	defer func() {
		if closeErr := w.Close(); err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "write vtk")
		}
	}()
	return Write(w, f)
}

// Write encodes a scalar field in the format accepted by
// Read, with ValuesPerLine values per data line.
//
// The values are written with enough precision that
// reading them back gives identical float64s.
func Write(w io.Writer, f *grid.ScalarField) error {
	for i := 0; i < f.NumArrays(); i++ {
		name := f.Array(i).Name()
		if name == "" || strings.ContainsAny(name, " \t\r\n") {
			return errors.Errorf("write vtk: invalid array name %q", name)
		}
	}

	h := f.Header()
	version := h.Version
	if version == "" {
		version = defaultVersion
	}
	title := strings.TrimSpace(strings.ReplaceAll(h.Title, "\n", " "))
	if title == "" {
		title = defaultTitle
	}
	g := f.Geometry()

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# vtk DataFile Version %s\n", version)
	fmt.Fprintln(bw, title)
	fmt.Fprintln(bw, encodingASCII)
	fmt.Fprintf(bw, "DATASET %s\n", datasetStructured)
	fmt.Fprintf(bw, "DIMENSIONS %d %d %d\n", g.Dim.X, g.Dim.Y, g.Dim.Z)
	fmt.Fprintf(bw, "ORIGIN %s\n", formatCoord(g.Origin))
	fmt.Fprintf(bw, "SPACING %s\n", formatCoord(g.Spacing))
	fmt.Fprintf(bw, "%s %d\n", sectionPointData, g.Dim.Len())
	fmt.Fprintf(bw, "%s %s %d\n", sectionField, defaultFieldName, f.NumArrays())
	for i := 0; i < f.NumArrays(); i++ {
		a := f.Array(i)
		fmt.Fprintf(bw, "%s 1 %d %s\n", a.Name(), a.Len(), ScalarTypes[0])
		values := a.Values()
		for start := 0; start < len(values); start += ValuesPerLine {
			end := start + ValuesPerLine
			if end > len(values) {
				end = len(values)
			}
			for j, v := range values[start:end] {
				if j > 0 {
					bw.WriteByte(' ')
				}
				bw.WriteString(formatFloat(v))
			}
			bw.WriteByte('\n')
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "write vtk")
	}
	return nil
}

func formatCoord(c model3d.Coord3D) string {
	return formatFloat(c.X) + " " + formatFloat(c.Y) + " " + formatFloat(c.Z)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
