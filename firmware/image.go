package firmware

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/synthread/go-hidflash/hexfile"
)

// Format is the decode strategy for a firmware file, selected once at the
// boundary from the filename extension and device family.
type Format int

const (
	// FormatSingleHex is a single Intel HEX session decoded at the family's
	// flash base.
	FormatSingleHex Format = iota

	// FormatDualSegmentHex is a composite HEX file carrying a primary image
	// plus a loader-utility session with absolute RAM addresses.
	FormatDualSegmentHex

	// FormatRawBinary is a contiguous byte image placed at the flash base.
	FormatRawBinary
)

// BlockSets is the decoded output of an image: the main firmware blocks and,
// for dual-segment images only, the loader-utility blocks. Both lists are
// independently ordered ascending by address.
type BlockSets struct {
	Main   []hexfile.Block
	Loader []hexfile.Block
}

// Image is a firmware file paired with the device it is destined for. It owns
// the raw bytes until blocks are built; block sets are derived values and are
// not retained.
type Image struct {
	Raw      []byte
	Filename string
	Device   DeviceID
}

// DetectFormat picks the decode strategy for a filename on the given family.
// Dual-segment images need the two independent memory regions only the
// large-address family exposes.
func DetectFormat(filename string, family Family) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".hex":
		return FormatSingleHex, nil
	case ".ehex":
		if family != FamilyLargeAddress {
			return 0, &UnsupportedFormatError{Extension: ext, Family: family}
		}
		return FormatDualSegmentHex, nil
	default:
		// Anything else is taken as raw binary. A misspelled extension lands
		// here too, so leave a trace.
		logrus.Warnf("unknown firmware extension %q on %s, treating as raw binary", ext, filename)
		return FormatRawBinary, nil
	}
}

// BuildBlocks decodes the image into its block sets. The operation is pure
// with respect to the device; no transport interaction happens here.
func (img *Image) BuildBlocks() (BlockSets, error) {
	family := FamilyOf(img.Device)

	format, err := DetectFormat(img.Filename, family)
	if err != nil {
		return BlockSets{}, err
	}

	switch format {
	case FormatSingleHex:
		main, err := hexfile.DecodeSession(string(img.Raw), family.FlashBase())
		if err != nil {
			return BlockSets{}, errors.Wrapf(err, "could not decode %s", img.Filename)
		}
		return BlockSets{Main: main}, nil

	case FormatDualSegmentHex:
		main, loader, err := hexfile.DecodeDualSegment(string(img.Raw), family.FlashBase())
		if err != nil {
			return BlockSets{}, errors.Wrapf(err, "could not decode %s", img.Filename)
		}
		return BlockSets{Main: main, Loader: loader}, nil

	default:
		return BlockSets{Main: hexfile.SplitBinary(img.Raw, family.FlashBase())}, nil
	}
}
