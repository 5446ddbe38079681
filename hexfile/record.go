package hexfile

import (
	"encoding/hex"
	"fmt"
)

// RecordType identifies the role of one Intel HEX record.
type RecordType byte

const (
	RecordData                   RecordType = 0x00
	RecordEndOfFile              RecordType = 0x01
	RecordExtendedSegmentAddress RecordType = 0x02
	RecordExtendedLinearAddress  RecordType = 0x04
)

// recordOverhead is the number of non-data bytes in a record: length, two
// address bytes, type, and the trailing checksum.
const recordOverhead = 5

// Record is one decoded Intel HEX line. The checksum has already been
// verified; records are immutable once parsed.
type Record struct {
	Length  byte
	Address uint16
	Type    RecordType
	Data    []byte
}

// ParseRecord decodes a single trimmed Intel HEX line. The line must start
// with the ':' marker, declare a length matching its actual field width, and
// carry a valid twos-complement checksum. Blank lines are not records and
// must be skipped by the caller.
func ParseRecord(line string) (*Record, error) {
	if len(line) == 0 || line[0] != ':' {
		return nil, &FormatError{Reason: "missing record marker ':'"}
	}

	raw, err := hex.DecodeString(line[1:])
	if err != nil {
		return nil, &FormatError{Reason: "invalid hex characters: " + err.Error()}
	}
	if len(raw) < recordOverhead {
		return nil, &FormatError{Reason: fmt.Sprintf("record too short: %d bytes", len(raw))}
	}

	length := raw[0]
	if len(raw) != int(length)+recordOverhead {
		return nil, &FormatError{Reason: fmt.Sprintf(
			"declared length %d does not match %d data bytes", length, len(raw)-recordOverhead)}
	}

	var sum byte
	for _, b := range raw {
		sum += b
	}
	if sum != 0 {
		return nil, &FormatError{Reason: fmt.Sprintf("checksum mismatch: residue 0x%02X", sum)}
	}

	return &Record{
		Length:  length,
		Address: uint16(raw[1])<<8 | uint16(raw[2]),
		Type:    RecordType(raw[3]),
		Data:    raw[4 : 4+int(length)],
	}, nil
}
