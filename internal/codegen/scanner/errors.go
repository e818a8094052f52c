package scanner

import (
	"errors"
	"fmt"
)

// FormatError reports missing or malformed structure in a vendor document.
// The generator treats some of these as recoverable (absent instance or
// signal data) and the rest as fatal for the affected device.
type FormatError struct {
	Peripheral string // peripheral the element belongs to, if known
	Element    string // the node or key that was expected
	Path       string // source document, if known
}

func (e *FormatError) Error() string {
	if e.Peripheral != "" {
		return fmt.Sprintf("document format: peripheral %s: missing %s", e.Peripheral, e.Element)
	}
	if e.Path != "" {
		return fmt.Sprintf("document format: %s: missing %s", e.Path, e.Element)
	}
	return fmt.Sprintf("document format: missing %s", e.Element)
}

// IsFormat reports whether err is (or wraps) a FormatError.
func IsFormat(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
