package gatewayfind

import (
	"fmt"
	"time"
)

// Gateway describes a Trådfri gateway found on the local network.
type Gateway struct {
	// Serial is the gateway serial taken from its hostname
	// (e.g. "TRADFRI-Gateway-b072bf261c43.local" -> "b072bf261c43")
	Serial string

	// Hostname is the gateway's mDNS hostname
	Hostname string

	// IP is the IPv4 (or, failing that, IPv6) address
	IP string

	// Port is the CoAP/DTLS port (typically 5684)
	Port int

	// Metadata holds the parsed TXT records
	Metadata map[string]string

	// DiscoveredAt is when the gateway was seen
	DiscoveredAt time.Time
}

// Addr returns the gateway address in "host:port" form, ready to dial.
func (g *Gateway) Addr() string {
	return fmt.Sprintf("%s:%d", g.IP, g.Port)
}

// String returns a human-readable one-line description.
func (g *Gateway) String() string {
	return fmt.Sprintf("%s at %s (serial %s)", g.Hostname, g.Addr(), g.Serial)
}
