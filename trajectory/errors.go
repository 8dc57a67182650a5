package trajectory

import (
	"github.com/pkg/errors"
)

// ErrMissingHeader is returned for a trajectory or motion file with no rows at all.
var ErrMissingHeader = errors.New("file has no header row")

// NewMalformedRecordError reports a field that could not be parsed. Rows count from 1 with the
// header as row 1, columns from 1, the way a spreadsheet shows them.
func NewMalformedRecordError(source string, row, column int, cause error) error {
	return errors.Wrapf(cause, "%s: malformed record at row %d column %d", source, row, column)
}

// NewRecordLengthError reports a row with the wrong number of fields.
func NewRecordLengthError(source string, row, actual, expected int) error {
	return errors.Errorf("%s: row %d has %d fields, expected %d", source, row, actual, expected)
}
