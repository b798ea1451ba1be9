package vtk

import "github.com/pkg/errors"

// Error kinds returned by Read and ReadFile.
//
// Returned errors wrap one of these with context; use
// errors.Is or errors.Cause to test the kind.
var (
	ErrFileUnreadable           = errors.New("file unreadable")
	ErrMissingVersionHeader     = errors.New("missing version header")
	ErrMissingTitleLine         = errors.New("missing title line")
	ErrUnsupportedEncoding      = errors.New("unsupported encoding")
	ErrUnsupportedGeometry      = errors.New("unsupported geometry")
	ErrMissingGeometryAttribute = errors.New("missing geometry attribute")
	ErrUnknownGeometryAttribute = errors.New("unknown geometry attribute")
	ErrUnsupportedDataSection   = errors.New("unsupported data section")
	ErrPointCountMismatch       = errors.New("point count mismatch")
	ErrUnsupportedFieldArity    = errors.New("unsupported field arity")
	ErrFieldCountMismatch       = errors.New("field count mismatch")
	ErrUnsupportedFieldType     = errors.New("unsupported field type")
	ErrTruncatedFieldData       = errors.New("truncated field data")

	// ErrMalformedLine is returned when a line has the
	// right keyword but its values cannot be parsed, are
	// not finite, or describe an impossible grid.
	ErrMalformedLine = errors.New("malformed line")
)

// unreadableError reports an I/O failure as
// ErrFileUnreadable while keeping the underlying error
// reachable through errors.Is and errors.As.
type unreadableError struct {
	err error
}

func (u *unreadableError) Error() string {
	return ErrFileUnreadable.Error() + ": " + u.err.Error()
}

// Cause returns the error kind, for errors.Cause.
func (u *unreadableError) Cause() error {
	return ErrFileUnreadable
}

func (u *unreadableError) Unwrap() []error {
	return []error{ErrFileUnreadable, u.err}
}
