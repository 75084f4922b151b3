// Package publish mirrors stored readings onto an MQTT broker so dashboards
// can subscribe without polling the HTTP API.
package publish

import (
	"encoding/json"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"plantlink/internal/sensor"
)

const readingsTopic = "plantlink/readings"

type Publisher struct {
	client mqtt.Client
	logger *slog.Logger
}

func Connect(broker string, clientID string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("Couldn't connect to MQTT broker:\n%w", token.Error())
	}

	logger.Info("Connected to MQTT broker", "broker", broker)
	return &Publisher{client: client, logger: logger}, nil
}

// Reading publishes one reading to the shared topic and to a per-device
// subtopic. Failures are logged, not returned; a flaky broker shouldn't
// stall the ingest path.
func (p *Publisher) Reading(r sensor.Reading) {
	b, err := json.Marshal(r)
	if err != nil {
		p.logger.Error("Couldn't marshal reading", "err", err)
		return
	}

	for _, topic := range []string{readingsTopic, readingsTopic + "/" + r.Device} {
		token := p.client.Publish(topic, 0, false, b)
		token.Wait()
		if token.Error() != nil {
			p.logger.Error("MQTT publish failed", "err", token.Error(), "topic", topic)
		}
	}
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
