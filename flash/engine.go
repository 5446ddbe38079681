package flash

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/synthread/go-hidflash/firmware"
	"github.com/synthread/go-hidflash/hexfile"
)

// ProgressFunc receives the fraction of eligible blocks sent so far, in
// (0, 1]. It is invoked once per block actually transmitted, never for
// skipped blocks and never for the sentinel.
type ProgressFunc func(fraction float64)

// Engine drives the device-side upload protocol: it filters blank blocks,
// frames each remaining block as a fixed-size report, retries transmissions,
// paces inter-block delays, and commits with the termination sentinel.
//
// An Engine borrows its transport only for the duration of one Flash call.
// Concurrent Flash calls against the same transport are not supported and
// must be serialized by the caller.
type Engine struct {
	transport Transport
	config    Config
}

// New creates a transfer engine over the given transport.
func New(t Transport, opts ...Option) *Engine {
	if t == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Engine{transport: t, config: cfg}
}

// Flash uploads both block sets and commits them. The transport is opened
// for the duration of the call and released on every exit path; release
// failures are swallowed. Main-set blocks go first, then loader-set blocks,
// each in list order. A failed flash leaves no partial-success state to
// resume from.
func (e *Engine) Flash(sets firmware.BlockSets, progress ProgressFunc) error {
	if err := e.transport.Open(); err != nil {
		return errors.Wrap(err, "could not open transport")
	}
	defer func() { _ = e.transport.Close() }()

	main := eligible(sets.Main)
	loader := eligible(sets.Loader)
	total := len(main) + len(loader)
	skipped := len(sets.Main) + len(sets.Loader) - total

	logrus.Debugf("flash: %d blocks to send (%d main, %d loader), %d blank skipped",
		total, len(main), len(loader), skipped)

	sent := 0
	for _, set := range [2][]hexfile.Block{main, loader} {
		for _, blk := range set {
			if err := e.sendWithRetry(buildReport(blk.Address, blk.Data), blk.Address); err != nil {
				return err
			}
			sent++
			if progress != nil {
				progress(float64(sent) / float64(total))
			}

			// the first block triggers the bootloader's full erase, so it
			// gets a much longer pause than the rest
			if sent == 1 {
				e.config.sleep(e.config.FirstBlockDelay)
			} else {
				e.config.sleep(e.config.BlockDelay)
			}
		}
	}

	if err := e.sendWithRetry(sentinelReport(), sentinelAddress); err != nil {
		return err
	}
	e.config.sleep(e.config.SettleDelay)

	logrus.Debugf("flash: done, %d blocks written", sent)

	return nil
}

// eligible filters one block set for transmission. The first block is always
// sent even if blank; every other all-0xFF block is skipped because the
// bootloader's erase already leaves unwritten flash at 0xFF.
func eligible(blocks []hexfile.Block) []hexfile.Block {
	out := make([]hexfile.Block, 0, len(blocks))
	for i, blk := range blocks {
		if i > 0 && isBlank(blk.Data) {
			continue
		}
		out = append(out, blk)
	}
	return out
}

// sendWithRetry attempts one report transmission up to the retry ceiling,
// backing off between attempts. Exhaustion aborts the transfer with a
// TransferError naming the block.
func (e *Engine) sendWithRetry(report []byte, addr uint32) error {
	var lastErr error
	for attempt := 1; attempt <= e.config.Retries; attempt++ {
		lastErr = e.transport.SendReport(report)
		if lastErr == nil {
			return nil
		}
		logrus.Debugf("flash: block 0x%08X attempt %d/%d failed: %v",
			addr, attempt, e.config.Retries, lastErr)
		if attempt < e.config.Retries {
			e.config.sleep(e.config.RetryDelay)
		}
	}
	return &TransferError{Address: addr, Attempts: e.config.Retries, Cause: lastErr}
}
