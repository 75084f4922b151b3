package display

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// SerialConnection talks to a monitor wired over USB serial. The same port
// carries the device's JSON reading lines, so the read side is exposed for
// the ingest bridge.
type SerialConnection struct {
	port *serial.Port
}

func OpenSerial(name string, baud int) (*SerialConnection, error) {
	// no read timeout: the ingest bridge blocks on whole lines
	c := &serial.Config{Name: name, Baud: baud}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("Couldn't open serial port %v:\n%w", name, err)
	}
	return &SerialConnection{port: port}, nil
}

func (s *SerialConnection) Write(data []byte) error {
	_, err := s.port.Write(data)
	return err
}

// Reader exposes the inbound side of the port for the ingest bridge.
func (s *SerialConnection) Reader() io.Reader {
	return s.port
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}
