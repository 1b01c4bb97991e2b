// Package config loads the bridge configuration file.
//
// The file lives at the platform's conventional location
// (e.g. ~/.config/tradfri-bridge/config.yaml on Linux) and is YAML:
//
//	version: 1
//	gateway:
//	  addr: 192.168.1.63:5684
//	  psk_identity: tradfri-bridge
//	  psk: hunter2hunter2
//	broker:
//	  url: tcp://localhost:1883
//	bridge:
//	  topic_prefix: tradfri-raw
//	  ping_interval: 60s
//	  discover_interval: 5m
//
// Every field is optional; CLI flags override file values. A missing
// file at the default location yields the defaults, while an explicitly
// given path must exist.
package config
