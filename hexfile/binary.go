package hexfile

// SplitBinary slices raw firmware bytes into consecutive blocks starting at
// the given base address. The final short block is padded to BlockSize with
// 0xFF, matching the erased state of unwritten flash.
func SplitBinary(raw []byte, base uint32) []Block {
	nblocks := (len(raw) + BlockSize - 1) / BlockSize
	out := make([]Block, 0, nblocks)

	for i := 0; i < nblocks; i++ {
		blk := blankBlock()
		copy(blk, raw[i*BlockSize:])
		out = append(out, Block{
			Address: base + uint32(i)*BlockSize,
			Data:    blk,
		})
	}
	return out
}
