package flash

// Transport is a device connection able to carry fixed-size bootloader
// reports. The engine opens it for exactly the duration of one flash
// operation and guarantees a close on every exit path. Opening an already
// open transport must fail fast; implementations are not required to be safe
// for concurrent operations.
type Transport interface {
	Open() error
	Close() error
	SendReport(report []byte) error
}
