package coap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{
			name: "context deadline",
			err:  context.DeadlineExceeded,
			want: ErrTypeTimeout,
		},
		{
			name: "wrapped context deadline",
			err:  fmt.Errorf("get: %w", context.DeadlineExceeded),
			want: ErrTypeTimeout,
		},
		{
			name: "net timeout",
			err:  net.Error(timeoutErr{}),
			want: ErrTypeTimeout,
		},
		{
			name: "net op error",
			err:  &net.OpError{Op: "dial", Err: errors.New("connection refused")},
			want: ErrTypeNetwork,
		},
		{
			name: "anything else",
			err:  errors.New("bad option"),
			want: ErrTypeProtocol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	inner := errors.New("connection refused")
	err := &Error{Type: ErrTypeNetwork, Op: "dial", Addr: "192.168.1.63:5684", Err: inner}

	assert.Contains(t, err.Error(), "dial")
	assert.Contains(t, err.Error(), "192.168.1.63:5684")
	assert.ErrorIs(t, err, inner)
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err, "address is required")

	_, err = NewClient(Config{Addr: "192.168.1.63:5684", PSKIdentity: "bridge"})
	assert.Error(t, err, "identity without key")

	c, err := NewClient(Config{Addr: "192.168.1.63:5684"})
	assert.NoError(t, err)
	assert.Equal(t, DefaultDialTimeout, c.cfg.DialTimeout)
	assert.Equal(t, DefaultRequestTimeout, c.cfg.RequestTimeout)
}
