// Package coap implements the device-protocol transport over go-coap.
//
// The client implements observer.Transport for a single Trådfri
// gateway. Connections are dialed lazily with exponential backoff and
// re-dialed after a session reset; observations ride on the connection
// and are cancelled implicitly when it is dropped.
//
// # Security
//
// Trådfri gateways speak CoAP over DTLS with a pre-shared key. When
// Config carries a PSK identity and key, the client dials DTLS with the
// TLS_PSK_WITH_AES_128_CCM_8 cipher suite; otherwise it falls back to
// plain UDP, which is useful against test servers.
//
// # Error Classification
//
// All errors returned by the client are *Error values carrying an
// ErrorType (network, timeout, protocol) so callers can log failures
// without string matching.
package coap
