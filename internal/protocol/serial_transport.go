// internal/protocol/serial_transport.go
package protocol

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// SerialConfig represents serial console configuration.
type SerialConfig struct {
	Port     string        `json:"port"`
	BaudRate int           `json:"baud_rate"`
	DataBits int           `json:"data_bits"`
	StopBits int           `json:"stop_bits"`
	Parity   string        `json:"parity"`
	Timeout  time.Duration `json:"timeout"`
}

// SerialTransport implements Transport over a serial port.
type SerialTransport struct {
	config *SerialConfig
	port   serial.Port
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
}

// NewSerialTransport creates a serial console transport.
func NewSerialTransport(config *SerialConfig, logger *zap.Logger) *SerialTransport {
	return &SerialTransport{
		config: config,
		logger: logger.With(
			zap.String("transport", "serial"),
			zap.String("port", config.Port),
		),
	}
}

// Open opens the serial port.
func (st *SerialTransport) Open(ctx context.Context) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if st.isOpen {
		return nil
	}

	st.logger.Info("Opening serial port",
		zap.Int("baud_rate", st.config.BaudRate),
	)

	mode := &serial.Mode{
		BaudRate: st.config.BaudRate,
		DataBits: st.config.DataBits,
		StopBits: serial.StopBits(st.config.StopBits),
	}

	switch st.config.Parity {
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}

	port, err := serial.Open(st.config.Port, mode)
	if err != nil {
		st.logger.Error("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("failed to open serial port %s: %w", st.config.Port, err)
	}

	if err := port.SetReadTimeout(st.config.Timeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	st.port = port
	st.isOpen = true
	st.logger.Info("Serial port opened successfully")
	return nil
}

// Close closes the serial port.
func (st *SerialTransport) Close() error {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if !st.isOpen || st.port == nil {
		return nil
	}

	if err := st.port.Close(); err != nil {
		st.logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	st.port = nil
	st.isOpen = false
	st.logger.Info("Serial port closed")
	return nil
}

// IsOpen reports whether the port is open.
func (st *SerialTransport) IsOpen() bool {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	return st.isOpen && st.port != nil
}

// Request writes one command line and reads the reply line. Commands
// are serialized; the console answers one line per command.
func (st *SerialTransport) Request(ctx context.Context, line string) (string, error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if !st.isOpen || st.port == nil {
		return "", fmt.Errorf("serial port not open")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	payload := []byte(line + "\r\n")
	n, err := st.port.Write(payload)
	if err != nil {
		st.logger.Error("Serial write failed", zap.Error(err))
		return "", fmt.Errorf("failed to write command: %w", err)
	}
	if n != len(payload) {
		return "", fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(payload))
	}

	reply, err := st.readLine(ctx, line)
	if err != nil {
		return "", err
	}

	st.logger.Debug("Console exchange completed",
		zap.String("command", line),
		zap.Int("reply_bytes", len(reply)),
	)
	return reply, nil
}

// readLine accumulates bytes until a newline, skipping empty lines and
// the echo of the command just sent.
func (st *SerialTransport) readLine(ctx context.Context, sent string) (string, error) {
	deadline := time.Now().Add(st.config.Timeout)
	buf := make([]byte, 256)
	acc := &lineAccumulator{echo: sent}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("timeout waiting for console reply")
		}

		n, err := st.port.Read(buf)
		if err != nil {
			return "", fmt.Errorf("failed to read console reply: %w", err)
		}

		if line, ok := acc.feed(buf[:n]); ok {
			return line, nil
		}
	}
}

// lineAccumulator assembles console reply lines from raw serial reads.
// Blank lines are dropped; if the console echoes input, the first line
// matching the sent command is dropped too.
type lineAccumulator struct {
	echo    string
	current []byte
}

func (la *lineAccumulator) feed(data []byte) (string, bool) {
	for _, b := range data {
		switch {
		case b == '\n':
			line := strings.TrimSpace(string(la.current))
			la.current = la.current[:0]
			if line == "" {
				continue
			}
			if la.echo != "" && line == la.echo {
				la.echo = ""
				continue
			}
			return line, true
		case b == '\r':
			// dropped, lines end with \r\n
		default:
			la.current = append(la.current, b)
		}
	}
	return "", false
}
