package firmware

import "fmt"

// UnsupportedFormatError indicates a valid firmware file in a format the
// target device family cannot accept.
type UnsupportedFormatError struct {
	Extension string
	Family    Family
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("format %q is not supported on %s devices", e.Extension, e.Family)
}
