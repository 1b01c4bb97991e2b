package gatewayfind

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServiceEntry(t *testing.T) {
	s := NewScanner()

	tests := []struct {
		name   string
		entry  *zeroconf.ServiceEntry
		verify func(t *testing.T, gw *Gateway)
	}{
		{
			name: "tradfri gateway with IPv4",
			entry: &zeroconf.ServiceEntry{
				HostName: "TRADFRI-Gateway-b072bf261c43.local.",
				Port:     5684,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.63")},
				Text:     []string{"version=1.21.31"},
			},
			verify: func(t *testing.T, gw *Gateway) {
				require.NotNil(t, gw)
				assert.Equal(t, "b072bf261c43", gw.Serial)
				assert.Equal(t, "192.168.1.63", gw.IP)
				assert.Equal(t, 5684, gw.Port)
				assert.Equal(t, "192.168.1.63:5684", gw.Addr())
				assert.Equal(t, "1.21.31", gw.Metadata["version"])
			},
		},
		{
			name: "mixed-case hostname",
			entry: &zeroconf.ServiceEntry{
				HostName: "tradfri-Gateway-B072BF261C43.local",
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
			},
			verify: func(t *testing.T, gw *Gateway) {
				require.NotNil(t, gw)
				assert.Equal(t, "b072bf261c43", gw.Serial)
			},
		},
		{
			name: "missing port falls back to DTLS default",
			entry: &zeroconf.ServiceEntry{
				HostName: "TRADFRI-Gateway-b072bf261c43.local.",
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.63")},
			},
			verify: func(t *testing.T, gw *Gateway) {
				require.NotNil(t, gw)
				assert.Equal(t, DefaultPort, gw.Port)
			},
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				HostName: "TRADFRI-Gateway-b072bf261c43.local.",
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			verify: func(t *testing.T, gw *Gateway) {
				require.NotNil(t, gw)
				assert.Equal(t, "fe80::1", gw.IP)
			},
		},
		{
			name: "unrelated CoAP device is filtered out",
			entry: &zeroconf.ServiceEntry{
				HostName: "shelly-plug-1234.local.",
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.80")},
			},
			verify: func(t *testing.T, gw *Gateway) {
				assert.Nil(t, gw)
			},
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				HostName: "TRADFRI-Gateway-b072bf261c43.local.",
			},
			verify: func(t *testing.T, gw *Gateway) {
				assert.Nil(t, gw)
			},
		},
		{
			name:  "empty hostname",
			entry: &zeroconf.ServiceEntry{},
			verify: func(t *testing.T, gw *Gateway) {
				assert.Nil(t, gw)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, s.parseServiceEntry(tt.entry))
		})
	}
}
