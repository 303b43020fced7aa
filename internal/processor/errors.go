package processor

import (
	"fmt"
	"strings"
)

// MalformedInputError reports input that is not a sequence of row mappings.
// Index is the offending element, or -1 when the whole input is unusable.
type MalformedInputError struct {
	Index  int
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("malformed input at row %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

// MissingColumnsError lists required headers absent from a dataset.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("dataset is missing required columns: %s", strings.Join(e.Columns, ", "))
}
