package flash

import "github.com/synthread/go-hidflash/hexfile"

const (
	// HeaderSize is the report header region preceding the payload.
	HeaderSize = 64

	// ReportSize is the full fixed report: header plus one block payload.
	ReportSize = HeaderSize + hexfile.BlockSize

	// addressMask keeps the 24 bits the header address field can carry. The
	// bootloader derives any higher bits from its own flash mapping, so the
	// field is deliberately not widened for large-address devices.
	addressMask = 0xFFFFFF

	// sentinelAddress is the header pattern of the commit/reboot report.
	sentinelAddress = 0xFFFFFF
)

// buildReport frames one block for transmission: bytes 0-2 hold the 24-bit
// block address little-endian, the rest of the header is zero, and the
// payload sits at the fixed header offset.
func buildReport(addr uint32, data []byte) []byte {
	r := make([]byte, ReportSize)
	addr &= addressMask
	r[0] = byte(addr)
	r[1] = byte(addr >> 8)
	r[2] = byte(addr >> 16)
	copy(r[HeaderSize:], data)
	return r
}

// sentinelReport builds the final transmission that tells the bootloader to
// finalize and restart the device: address field all 0xFF, payload all zero.
func sentinelReport() []byte {
	r := make([]byte, ReportSize)
	r[0], r[1], r[2] = 0xFF, 0xFF, 0xFF
	return r
}

// isBlank reports whether a block is entirely 0xFF, the erased state of
// unwritten flash.
func isBlank(data []byte) bool {
	for _, b := range data {
		if b != 0xFF {
			return false
		}
	}
	return true
}
