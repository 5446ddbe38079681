package firmware

import (
	"errors"
	"testing"

	"github.com/synthread/go-hidflash/hexfile"
)

var (
	largeDevice = DeviceID{0x16C0, 0x0A91}
	smallDevice = DeviceID{0x16C0, 0x0478}
)

func TestFamilyOf(t *testing.T) {
	tests := []struct {
		name string
		id   DeviceID
		want Family
	}{
		{"known large-address device", largeDevice, FamilyLargeAddress},
		{"known small-address device", smallDevice, FamilySmallAddress},
		{"unrecognized device defaults to small", DeviceID{0xDEAD, 0xBEEF}, FamilySmallAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FamilyOf(tt.id); got != tt.want {
				t.Errorf("FamilyOf(%04x:%04x) = %v, want %v",
					tt.id.VendorID, tt.id.ProductID, got, tt.want)
			}
		})
	}
}

func TestFamilyFlashBase(t *testing.T) {
	if got := FamilyLargeAddress.FlashBase(); got != 0x60000000 {
		t.Errorf("large FlashBase = 0x%08X, want 0x60000000", got)
	}
	if got := FamilySmallAddress.FlashBase(); got != 0 {
		t.Errorf("small FlashBase = 0x%08X, want 0", got)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		family   Family
		want     Format
		wantErr  bool
	}{
		{"hex on small", "blink.hex", FamilySmallAddress, FormatSingleHex, false},
		{"hex on large", "blink.hex", FamilyLargeAddress, FormatSingleHex, false},
		{"uppercase extension", "BLINK.HEX", FamilySmallAddress, FormatSingleHex, false},
		{"ehex on large", "blink.ehex", FamilyLargeAddress, FormatDualSegmentHex, false},
		{"ehex on small is rejected", "blink.ehex", FamilySmallAddress, 0, true},
		{"bin falls through to raw", "blink.bin", FamilySmallAddress, FormatRawBinary, false},
		{"unknown extension falls through to raw", "blink.hxe", FamilySmallAddress, FormatRawBinary, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.filename, tt.family)
			if tt.wantErr {
				if err == nil {
					t.Fatal("DetectFormat succeeded, want error")
				}
				var uerr *UnsupportedFormatError
				if !errors.As(err, &uerr) {
					t.Errorf("error type = %T, want *UnsupportedFormatError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildBlocksSingleHexSmallFamily(t *testing.T) {
	img := &Image{
		Raw:      []byte(":0400000001020304F2\n:00000001FF\n"),
		Filename: "app.hex",
		Device:   smallDevice,
	}

	sets, err := img.BuildBlocks()
	if err != nil {
		t.Fatalf("BuildBlocks error: %v", err)
	}
	if len(sets.Main) != 1 || len(sets.Loader) != 0 {
		t.Fatalf("got %d main / %d loader blocks, want 1 / 0", len(sets.Main), len(sets.Loader))
	}
	if sets.Main[0].Address != 0 {
		t.Errorf("Address = 0x%08X, want 0 (small-address offset)", sets.Main[0].Address)
	}
}

func TestBuildBlocksSingleHexLargeFamily(t *testing.T) {
	// large-address devices decode at the flash base, so a record at HEX
	// address 0x60000000 (via ELA) lands in the first block
	img := &Image{
		Raw: []byte(":0200000460009A\n" +
			":0400000001020304F2\n" +
			":00000001FF\n"),
		Filename: "app.hex",
		Device:   largeDevice,
	}

	sets, err := img.BuildBlocks()
	if err != nil {
		t.Fatalf("BuildBlocks error: %v", err)
	}
	if len(sets.Main) != 1 {
		t.Fatalf("got %d main blocks, want 1", len(sets.Main))
	}
	if sets.Main[0].Address != 0x60000000 {
		t.Errorf("Address = 0x%08X, want 0x60000000", sets.Main[0].Address)
	}
}

func TestBuildBlocksDualSegment(t *testing.T) {
	img := &Image{
		Raw: []byte(":0200000460009A\n" +
			":0400000001020304F2\n" +
			":00000001FF\n" +
			":0400100011121314A2\n" +
			":00000001FF\n"),
		Filename: "app.ehex",
		Device:   largeDevice,
	}

	sets, err := img.BuildBlocks()
	if err != nil {
		t.Fatalf("BuildBlocks error: %v", err)
	}
	if len(sets.Main) != 1 {
		t.Errorf("got %d main blocks, want 1", len(sets.Main))
	}
	if len(sets.Loader) != 1 {
		t.Fatalf("got %d loader blocks, want 1", len(sets.Loader))
	}
	if sets.Loader[0].Address != 0 {
		t.Errorf("loader Address = 0x%08X, want 0", sets.Loader[0].Address)
	}
}

func TestBuildBlocksDualSegmentOnSmallFamily(t *testing.T) {
	img := &Image{
		Raw:      []byte(":00000001FF\n"),
		Filename: "app.ehex",
		Device:   smallDevice,
	}

	_, err := img.BuildBlocks()
	var uerr *UnsupportedFormatError
	if !errors.As(err, &uerr) {
		t.Fatalf("error = %v, want *UnsupportedFormatError", err)
	}
}

func TestBuildBlocksRawBinary(t *testing.T) {
	img := &Image{
		Raw:      make([]byte, 3*hexfile.BlockSize),
		Filename: "app.bin",
		Device:   largeDevice,
	}

	sets, err := img.BuildBlocks()
	if err != nil {
		t.Fatalf("BuildBlocks error: %v", err)
	}
	if len(sets.Main) != 3 {
		t.Fatalf("got %d main blocks, want 3", len(sets.Main))
	}
	if sets.Main[0].Address != 0x60000000 {
		t.Errorf("Address = 0x%08X, want the large-family flash base", sets.Main[0].Address)
	}
}

func TestBuildBlocksMalformedHex(t *testing.T) {
	img := &Image{
		Raw:      []byte(":0400000001020304F3\n"),
		Filename: "app.hex",
		Device:   smallDevice,
	}

	_, err := img.BuildBlocks()
	var ferr *hexfile.FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("error = %v, want wrapped *hexfile.FormatError", err)
	}
}
