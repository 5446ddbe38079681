package monitor

import "strings"

// LineFramer reassembles a byte stream into discrete newline-delimited
// records. Complete lines are emitted in arrival order, trimmed of
// surrounding whitespace; the trailing partial segment is retained for the
// next Feed. A line that never receives its '\n' is never emitted.
type LineFramer struct {
	partial string
	emit    func(line string)
}

// NewLineFramer creates a framer delivering complete lines to emit.
func NewLineFramer(emit func(line string)) *LineFramer {
	return &LineFramer{emit: emit}
}

// Feed appends a chunk to the retained buffer and emits every line completed
// by it.
func (f *LineFramer) Feed(chunk string) {
	data := f.partial + chunk
	for {
		nl := strings.IndexByte(data, '\n')
		if nl < 0 {
			break
		}
		line := strings.TrimSpace(data[:nl])
		data = data[nl+1:]
		if f.emit != nil {
			f.emit(line)
		}
	}
	f.partial = data
}

// Reset discards the retained partial segment. Called when the stream is
// closed; the unterminated tail is dropped, not flushed.
func (f *LineFramer) Reset() {
	f.partial = ""
}
