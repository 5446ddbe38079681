package flash

import "fmt"

// TransferError reports a block whose transmission exhausted every retry
// attempt. The transfer is aborted and must be restarted from the beginning;
// the transport has already been released when this surfaces.
type TransferError struct {
	Address  uint32
	Attempts int
	Cause    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer of block 0x%08X failed after %d attempts: %v",
		e.Address, e.Attempts, e.Cause)
}

func (e *TransferError) Unwrap() error {
	return e.Cause
}
