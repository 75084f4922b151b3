package display

import (
	"errors"
	"log/slog"

	"tinygo.org/x/bluetooth"
)

// The monitor exposes a Nordic UART service when it runs untethered; frames
// written to the RX characteristic land in the same firmware handler as
// serial bytes.
var (
	uartServiceUUID = bluetooth.NewUUID([16]byte{
		0x6e, 0x40, 0x00, 0x01, 0xb5, 0xa3, 0xf3, 0x93, 0xe0, 0xa9, 0xe5, 0x0e, 0x24, 0xdc, 0xca, 0x9e,
	})
	uartRxUUID = bluetooth.NewUUID([16]byte{
		0x6e, 0x40, 0x00, 0x02, 0xb5, 0xa3, 0xf3, 0x93, 0xe0, 0xa9, 0xe5, 0x0e, 0x24, 0xdc, 0xca, 0x9e,
	})
)

type BluetoothConnection struct {
	device bluetooth.Device
	writer bluetooth.DeviceCharacteristic
}

// ConnectBluetooth scans for a monitor advertising the given local name and
// connects to its UART service.
func ConnectBluetooth(name string) (*BluetoothConnection, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		slog.Error("Failed to enable Bluetooth", "err", err)
		return nil, err
	}

	devices := make(chan bluetooth.ScanResult, 1)

	go func() {
		err := adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if result.LocalName() == name {
				slog.Info("Found device:",
					"deviceName", result.LocalName(),
				)
				devices <- result
				adapter.StopScan()
			}
		})
		if err != nil {
			slog.Error("Failed to scan for devices:",
				"err", err,
			)
			close(devices)
		}
	}()

	dev, ok := <-devices

	if !ok {
		return nil, errors.New("No devices found")
	}

	slog.Debug("Connecting to device...")
	device, err := adapter.Connect(dev.Address, bluetooth.ConnectionParams{})
	if err != nil {
		slog.Error("Failed to connect to device:",
			"err", err,
		)
		return nil, err
	}

	slog.Debug("Discovering service...")
	services, err := device.DiscoverServices([]bluetooth.UUID{uartServiceUUID})
	if err != nil {
		slog.Error("Failed to discover service:",
			"err", err,
		)
		device.Disconnect()
		return nil, err
	}

	slog.Debug("Discovering characteristics...")
	characteristics, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{uartRxUUID})
	if err != nil {
		slog.Error("Failed to discover characteristics:",
			"err", err,
		)
		device.Disconnect()
		return nil, err
	}

	return &BluetoothConnection{device: device, writer: characteristics[0]}, nil
}

func (c *BluetoothConnection) Write(data []byte) error {
	_, err := c.writer.WriteWithoutResponse(data)
	return err
}

func (c *BluetoothConnection) Close() error {
	c.device.Disconnect()
	return nil
}
