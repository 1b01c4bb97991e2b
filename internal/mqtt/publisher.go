package mqtt

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/tradfri-bridge/internal/logging"
)

const (
	// DefaultClientID is the MQTT client identifier of the bridge.
	DefaultClientID = "tradfri-bridge"

	// StateTopicSuffix is appended to the topic prefix for the bridge's
	// retained online/offline state.
	StateTopicSuffix = "bridge/state"

	stateOnline  = "online"
	stateOffline = "offline"

	// connectTimeout bounds the initial broker connection, including
	// backoff retries.
	connectTimeout = 30 * time.Second

	// disconnectQuiesce is how long Close waits for in-flight publishes.
	disconnectQuiesce = 250 // milliseconds, paho's unit
)

// Config holds the broker connection settings.
type Config struct {
	// BrokerURL is the broker address, e.g. "tcp://localhost:1883" or
	// "ws://broker:9001/mqtt". Required.
	BrokerURL string

	// ClientID identifies this bridge on the broker. Default
	// "tradfri-bridge".
	ClientID string

	// TopicPrefix is used to derive the bridge state topic. Default
	// "tradfri-raw".
	TopicPrefix string

	// Username and Password are optional broker credentials.
	Username string
	Password string
}

// Publisher is the message-bus boundary of the bridge. It implements
// observer.Publisher with QoS 1 and no duplicate flag; publishes are
// fire-and-forget, with delivery errors surfaced as log lines only.
type Publisher struct {
	client     paho.Client
	stateTopic string
}

// Connect dials the broker, retrying with exponential backoff, and
// announces the bridge as online. A last will flips the state topic to
// offline if the connection is lost ungracefully.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.BrokerURL == "" {
		return nil, fmt.Errorf("mqtt: broker URL is required")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "tradfri-raw"
	}
	stateTopic := cfg.TopicPrefix + "/" + StateTopicSuffix

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetWill(stateTopic, stateOffline, 1, true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetOnConnectHandler(func(c paho.Client) {
		logging.Info("Connected to MQTT broker", zap.String("broker", cfg.BrokerURL))
		c.Publish(stateTopic, 1, true, stateOnline)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logging.Warn("MQTT connection lost", zap.Error(err))
	})

	client := paho.NewClient(opts)

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = connectTimeout
	err := backoff.Retry(func() error {
		token := client.Connect()
		token.Wait()
		if terr := token.Error(); terr != nil {
			logging.Debug("MQTT connect attempt failed",
				zap.String("broker", cfg.BrokerURL),
				zap.Error(terr),
			)
			return terr
		}
		return nil
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("mqtt: failed to connect to %s: %w", cfg.BrokerURL, err)
	}

	return &Publisher{client: client, stateTopic: stateTopic}, nil
}

// Publish sends payload to topic with QoS 1. It never blocks on
// delivery: the token is drained in the background and failures are
// logged, matching the fire-and-forget contract of the bus boundary.
func (p *Publisher) Publish(topic string, payload []byte, retain bool) error {
	if !p.client.IsConnectionOpen() {
		// paho queues messages while reconnecting; still worth a note.
		logging.Debug("Publishing while broker connection is down",
			zap.String("topic", topic),
		)
	}
	token := p.client.Publish(topic, 1, retain, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			logging.Warn("MQTT publish failed",
				zap.String("topic", topic),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// Close announces the bridge as offline and disconnects.
func (p *Publisher) Close() {
	token := p.client.Publish(p.stateTopic, 1, true, stateOffline)
	token.Wait()
	p.client.Disconnect(disconnectQuiesce)
}
