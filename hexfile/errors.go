package hexfile

import "fmt"

// FormatError reports a malformed or checksum-failing HEX input line. Line is
// 1-based and set by the session decoder; it is zero when a single record was
// parsed outside of a session.
type FormatError struct {
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("hex line %d: %s", e.Line, e.Reason)
	}
	return "hex: " + e.Reason
}
