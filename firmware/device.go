package firmware

// Family classifies a device by its addressable flash layout. The family
// decides the address offset applied while decoding and whether dual-segment
// images are accepted.
type Family int

const (
	// FamilySmallAddress devices map firmware from address zero.
	FamilySmallAddress Family = iota

	// FamilyLargeAddress devices map firmware at an external flash base and
	// expose a separate RAM region for the loader utility.
	FamilyLargeAddress
)

// largeAddressFlashBase is the external flash mapping of the large-address
// family.
const largeAddressFlashBase = 0x60000000

func (f Family) String() string {
	if f == FamilyLargeAddress {
		return "large-address"
	}
	return "small-address"
}

// FlashBase returns the base address of the family's firmware region.
func (f Family) FlashBase() uint32 {
	if f == FamilyLargeAddress {
		return largeAddressFlashBase
	}
	return 0
}

// DeviceID identifies a bootloader device on the bus.
type DeviceID struct {
	VendorID  uint16
	ProductID uint16
}

// deviceFamilies is the static identification table. Entries not listed here
// default to the small-address family.
var deviceFamilies = map[DeviceID]Family{
	{0x16C0, 0x0478}: FamilySmallAddress,
	{0x16C0, 0x0479}: FamilySmallAddress,
	{0x16C0, 0x0A91}: FamilyLargeAddress,
	{0x16C0, 0x0A92}: FamilyLargeAddress,
}

// FamilyOf looks up the device family for an id, defaulting to the
// small-address family for unrecognized devices.
func FamilyOf(id DeviceID) Family {
	if f, ok := deviceFamilies[id]; ok {
		return f
	}
	return FamilySmallAddress
}
