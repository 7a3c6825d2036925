package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResultNotFound is returned when a stored prediction does not exist or has expired
	ErrResultNotFound = errors.New("prediction result not found")
	// ErrStoreDisabled is returned when downloads are requested but no result store is configured
	ErrStoreDisabled = errors.New("prediction result store is disabled")
)

// MissingColumnsError is returned when an upload lacks required feature columns.
// No prediction is attempted in that case.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("the following required columns are missing: %s", strings.Join(e.Columns, ", "))
}
