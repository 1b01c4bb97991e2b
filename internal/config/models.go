package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that marshals to and from YAML as a
// human-readable string ("30s", "5m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// File represents the entire bridge configuration file.
type File struct {
	Version int     `yaml:"version"`
	Gateway Gateway `yaml:"gateway"`
	Broker  Broker  `yaml:"broker"`
	Bridge  Bridge  `yaml:"bridge"`
}

// Gateway holds the Trådfri gateway connection settings.
type Gateway struct {
	// Addr is the gateway "host:port". Empty means discover via mDNS.
	Addr string `yaml:"addr,omitempty"`

	// PSKIdentity and PSK enable DTLS. The PSK is the key printed on the
	// bottom of the gateway, or one obtained through the pairing exchange.
	PSKIdentity string `yaml:"psk_identity,omitempty"`
	PSK         string `yaml:"psk,omitempty"`
}

// Broker holds the MQTT broker settings.
type Broker struct {
	URL      string `yaml:"url"`
	ClientID string `yaml:"client_id,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Bridge holds the observer tuning knobs. Zero values select the
// observer's defaults.
type Bridge struct {
	TopicPrefix      string   `yaml:"topic_prefix,omitempty"`
	PingInterval     Duration `yaml:"ping_interval,omitempty"`
	PingTimeout      Duration `yaml:"ping_timeout,omitempty"`
	DequeueInterval  Duration `yaml:"dequeue_interval,omitempty"`
	DiscoverInterval Duration `yaml:"discover_interval,omitempty"`
}

// Default returns a File with default values.
func Default() *File {
	return &File{
		Version: 1,
		Broker: Broker{
			URL:      "tcp://localhost:1883",
			ClientID: "tradfri-bridge",
		},
		Bridge: Bridge{
			TopicPrefix: "tradfri-raw",
		},
	}
}
