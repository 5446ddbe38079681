package hexfile

import (
	"bufio"
	"strings"

	"golang.org/x/exp/slices"
)

// BlockSize is the fixed size of an addressed firmware block.
const BlockSize = 1024

// Block is a fixed-size unit of firmware data tagged with its destination
// memory address. Address is always block-aligned.
type Block struct {
	Address uint32
	Data    []byte
}

// session accumulates decode state while scanning one HEX stream: the rolling
// base address and a sparse map of lazily allocated blocks keyed by index.
type session struct {
	offset uint32
	base   uint32
	blocks map[int][]byte
}

// DecodeSession decodes one HEX session into 1 KiB blocks. The offset maps
// HEX-declared addresses into the device's addressable region; bytes landing
// below it are out of the region of interest and silently dropped. Decoding
// stops at the first end-of-file record, or at end of input when none
// appears. The returned blocks are sorted ascending by address.
func DecodeSession(text string, offset uint32) ([]Block, error) {
	s := &session{offset: offset, blocks: map[int][]byte{}}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, err := ParseRecord(line)
		if err != nil {
			if ferr, ok := err.(*FormatError); ok {
				ferr.Line = lineNum
			}
			return nil, err
		}

		if done := s.apply(rec); done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &FormatError{Line: lineNum, Reason: err.Error()}
	}

	return s.finalize(), nil
}

// apply folds one record into the session and reports whether the session
// terminated.
func (s *session) apply(rec *Record) bool {
	switch rec.Type {
	case RecordData:
		abs := int64(s.base) + int64(rec.Address) - int64(s.offset)
		for i, b := range rec.Data {
			s.write(abs+int64(i), b)
		}
	case RecordEndOfFile:
		return true
	case RecordExtendedSegmentAddress:
		s.base = beHigh16(rec.Data) << 4
	case RecordExtendedLinearAddress:
		s.base = beHigh16(rec.Data) << 16
	default:
		// unrecognized record types have no address or data effect
	}
	return false
}

// write stores one byte at the given region-relative address, allocating the
// containing block on first touch. Negative addresses are below the region
// and dropped.
func (s *session) write(addr int64, b byte) {
	if addr < 0 {
		return
	}
	idx := int(addr / BlockSize)
	blk, ok := s.blocks[idx]
	if !ok {
		blk = blankBlock()
		s.blocks[idx] = blk
	}
	blk[addr%BlockSize] = b
}

// finalize converts the sparse block map into an address-ascending block
// list. The sort is an explicit step; map iteration order is never relied on.
func (s *session) finalize() []Block {
	out := make([]Block, 0, len(s.blocks))
	for idx, data := range s.blocks {
		out = append(out, Block{
			Address: s.offset + uint32(idx)*BlockSize,
			Data:    data,
		})
	}
	slices.SortFunc(out, func(a, b Block) int {
		switch {
		case a.Address < b.Address:
			return -1
		case a.Address > b.Address:
			return 1
		}
		return 0
	})
	return out
}

func blankBlock() []byte {
	blk := make([]byte, BlockSize)
	for i := range blk {
		blk[i] = 0xFF
	}
	return blk
}

// beHigh16 reads the big-endian 16-bit payload of an address-base record.
func beHigh16(data []byte) uint32 {
	if len(data) < 2 {
		return 0
	}
	return uint32(data[0])<<8 | uint32(data[1])
}
