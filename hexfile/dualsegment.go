package hexfile

import "strings"

// eofLine is the canonical Intel HEX end-of-file record.
const eofLine = ":00000001FF"

// DecodeDualSegment decodes a composite firmware text holding two HEX
// sessions back to back. Everything up to and including the first canonical
// end-of-file line is the primary session, decoded at the given offset; the
// remainder is the loader-utility session, decoded at offset zero because its
// addresses are already absolute RAM addresses. A text without the marker is
// accepted as a single primary session with an empty loader set.
func DecodeDualSegment(text string, offset uint32) (main, loader []Block, err error) {
	primary, rest := splitAtEOF(text)

	main, err = DecodeSession(primary, offset)
	if err != nil {
		return nil, nil, err
	}

	if strings.TrimSpace(rest) == "" {
		return main, nil, nil
	}

	loader, err = DecodeSession(rest, 0)
	if err != nil {
		return nil, nil, err
	}
	return main, loader, nil
}

// splitAtEOF cuts the text just after the first line that is exactly the
// canonical end-of-file record, ignoring surrounding whitespace.
func splitAtEOF(text string) (primary, rest string) {
	pos := 0
	for pos < len(text) {
		next := len(text)
		line := text[pos:]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
			next = pos + nl + 1
		}
		if strings.TrimSpace(line) == eofLine {
			return text[:next], text[next:]
		}
		pos = next
	}
	return text, ""
}
