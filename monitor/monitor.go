package monitor

import (
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

var DefaultBaud = 115200

var ErrAlreadyOpen = errors.New("serial monitor is already open")
var ErrNotOpen = errors.New("serial monitor is not open")

// Config defines the serial link parameters for one monitor session.
type Config struct {
	Port string
	Baud int
}

// Monitor streams text diagnostics from a device over a serial link, framing
// the inbound bytes into lines and pushing each one to the registered
// callback. It retains the port for the lifetime of the connection, until
// explicitly closed.
type Monitor struct {
	mu     sync.Mutex
	port   serial.Port
	framer *LineFramer
	onLine func(line string)
}

func New() *Monitor {
	return &Monitor{}
}

// OnLine registers the consumer callback for complete lines. It replaces any
// previous registration and applies to subsequently received data.
func (m *Monitor) OnLine(fn func(line string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLine = fn
}

// Open connects to the serial port and starts the read loop. Opening an
// already open monitor fails fast.
func (m *Monitor) Open(c Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.port != nil {
		return ErrAlreadyOpen
	}

	baud := c.Baud
	if baud <= 0 {
		baud = DefaultBaud
	}

	port, err := serial.Open(c.Port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return errors.Wrap(err, "could not open serial")
	}

	m.port = port
	m.framer = NewLineFramer(m.deliver)
	go m.rx(port)

	logrus.Debug("monitor open")

	return nil
}

// Close closes the port, which makes the read loop observe end-of-stream and
// terminate without emitting further lines. The retained partial line is
// discarded.
func (m *Monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.port == nil {
		return ErrNotOpen
	}

	err := m.port.Close()
	m.port = nil
	m.framer.Reset()
	m.framer = nil

	logrus.Debug("monitor close")

	return err
}

// IsOpen reports whether a session is active.
func (m *Monitor) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.port != nil
}

// rx is the loop that reads from the port until it is closed, feeding every
// chunk to the framer.
func (m *Monitor) rx(port serial.Port) {
	buf := make([]byte, 256)

	for {
		n, err := port.Read(buf)
		if err != nil {
			if perr, ok := err.(*serial.PortError); ok && perr.Code() == serial.PortClosed {
				return
			}
			if errors.Is(err, syscall.EBADF) {
				return
			}
			logrus.Error("monitor rx err: ", err.Error())
			return
		}
		if n == 0 {
			return
		}

		m.mu.Lock()
		// the port may have been closed while we were blocked in Read;
		// nothing may be emitted once Close has begun
		if m.port == port && m.framer != nil {
			m.framer.Feed(string(buf[:n]))
		}
		m.mu.Unlock()
	}
}

// deliver hands one complete line to the consumer. Runs with the monitor
// lock held from rx.
func (m *Monitor) deliver(line string) {
	if m.onLine != nil {
		logrus.Debugf("monitor rx line: %q", line)
		m.onLine(line)
	}
}
