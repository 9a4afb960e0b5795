package outputhandler

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/venslabs/licensepatch/pkg/api/types"
)

type OutputHandler interface {
	HandleComponents([]types.ComponentData) error
	Close() error
}

const (
	FormatJSON      = "json"
	FormatTable     = "table"
	FormatCycloneDX = "cyclonedx"
)

// Formats lists the accepted --output-format values.
var Formats = []string{FormatJSON, FormatTable, FormatCycloneDX}

// New returns the handler for format.
func New(format string, w io.Writer) (OutputHandler, error) {
	switch format {
	case FormatJSON:
		return NewJSONOutputHandler(w), nil
	case FormatTable:
		return NewTableOutputHandler(w), nil
	case FormatCycloneDX:
		return NewCycloneDXOutputHandler(w), nil
	default:
		return nil, errors.Newf("unknown output format %q (expected one of %v)", format, Formats)
	}
}
