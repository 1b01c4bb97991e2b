package coap

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorType represents the category of transport error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (connection refused,
	// unreachable host, DTLS handshake failure)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the exchange ran out of time, including
	// exhausted confirmable retransmissions
	ErrTypeTimeout
	// ErrTypeProtocol indicates a CoAP-level anomaly
	ErrTypeProtocol
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeProtocol:
		return "Protocol Error"
	default:
		return "Unknown Error"
	}
}

// Error is a classified transport error.
type Error struct {
	Type ErrorType
	Op   string
	Addr string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("coap %s %s: %s: %v", e.Op, e.Addr, e.Type, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps an underlying error onto an ErrorType.
func classify(err error) ErrorType {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTypeTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return ErrTypeTimeout
		}
		return ErrTypeNetwork
	}
	return ErrTypeProtocol
}
