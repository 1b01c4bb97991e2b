// Package gatewayfind provides mDNS-based discovery of Trådfri gateways.
//
// Gateways advertise themselves as "_coap._udp" services with hostnames
// of the form "TRADFRI-Gateway-<serial>.local". The scanner browses for
// those services, filters out unrelated CoAP devices, and collects the
// address to dial (IPv4 preferred, DTLS port 5684 by default).
//
// # Usage Example
//
//	scanner := gatewayfind.NewScanner()
//	gateways, err := scanner.Scan()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, gw := range gateways {
//	    fmt.Println(gw)
//	}
//
// # Network Requirements
//
//   - Multicast support on the network interface
//   - Gateway on the same local network segment
//   - Firewall allowing mDNS (UDP port 5353)
package gatewayfind
