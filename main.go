package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"plantlink/internal/bridge"
	"plantlink/internal/display"
	"plantlink/internal/publish"
	"plantlink/internal/qr"
	"plantlink/internal/sensor"
	"plantlink/internal/server"
)

func main() {
	var (
		httpAddr   = flag.String("http", ":8080", "HTTP listen address")
		dbPath     = flag.String("db", "plantlink.db", "sqlite database path")
		serialPort = flag.String("serial", "", "serial port of the plant monitor, e.g. /dev/ttyUSB0")
		baud       = flag.Int("baud", 115200, "serial baud rate")
		bleName    = flag.String("ble", "", "BLE local name of an untethered plant monitor")
		broker     = flag.String("mqtt", "", "MQTT broker URL, e.g. tcp://localhost:1883; empty disables publishing")
		qrEndpoint = flag.String("qr-endpoint", qr.DefaultEndpoint, "QR rendering endpoint")
		deviceName = flag.String("device", "plant", "name stamped onto serial readings")
	)
	flag.Parse()

	fmt.Println("Hello, Plantlink!")
	logger := slog.Default()

	repository := NewRepository(*dbPath)
	defer repository.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var publishReading func(sensor.Reading)
	if *broker != "" {
		pub, err := publish.Connect(*broker, "plantlink-bridge", logger.With("src", "mqtt"))
		if err != nil {
			logger.Error("Couldn't connect to MQTT broker", "err", err)
			os.Exit(1)
		}
		defer pub.Close()
		publishReading = pub.Reading
	}

	var conn display.Connection
	switch {
	case *serialPort != "":
		sc, err := display.OpenSerial(*serialPort, *baud)
		if err != nil {
			logger.Error("Couldn't open serial port", "err", err)
			os.Exit(1)
		}
		conn = sc

		b := &bridge.Bridge{
			Device:  *deviceName,
			Store:   repository,
			Publish: publishReading,
			Logger:  logger.With("src", "bridge"),
		}
		go func() {
			if err := b.Run(ctx, sc.Reader()); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Serial bridge stopped", "err", err)
			}
		}()
	case *bleName != "":
		bc, err := display.ConnectBluetooth(*bleName)
		if err != nil {
			logger.Error("Couldn't connect to monitor over BLE", "err", err)
			os.Exit(1)
		}
		conn = bc
	default:
		logger.Info("No device attached, display endpoints will return 503")
	}
	if conn != nil {
		defer conn.Close()
	}

	s := &server.Server{
		Logger:  logger.With("src", "server"),
		Store:   repository,
		QR:      qr.NewClient(*qrEndpoint),
		Display: conn,
		Publish: publishReading,
	}

	fmt.Printf("Starting server on %s...\n", *httpAddr)
	httpServer := http.Server{Addr: *httpAddr, Handler: s.Router()}
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Printf("Error starting server: %v\n", err)
		os.Exit(1)
	}
}
