package coap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	piondtls "github.com/pion/dtls/v2"
	"github.com/plgd-dev/go-coap/v2/dtls"
	"github.com/plgd-dev/go-coap/v2/message/codes"
	"github.com/plgd-dev/go-coap/v2/udp"
	udpclient "github.com/plgd-dev/go-coap/v2/udp/client"
	"github.com/plgd-dev/go-coap/v2/udp/message/pool"
	"go.uber.org/zap"

	"github.com/muurk/tradfri-bridge/internal/logging"
	"github.com/muurk/tradfri-bridge/internal/observer"
)

const (
	// DefaultPort is the CoAP-over-DTLS port Trådfri gateways listen on.
	DefaultPort = 5684

	// DefaultDialTimeout bounds one connection attempt.
	DefaultDialTimeout = 10 * time.Second

	// DefaultRequestTimeout bounds a single request exchange, including
	// confirmable retransmissions handled by the CoAP library.
	DefaultRequestTimeout = 15 * time.Second
)

// Config holds the connection settings for one gateway.
type Config struct {
	// Addr is the gateway address as "host:port".
	Addr string

	// PSKIdentity and PSK enable DTLS with pre-shared keys when both
	// are set. Trådfri gateways require this; plain UDP is kept for
	// test servers.
	PSKIdentity string
	PSK         []byte

	// DialTimeout bounds one connection attempt. Default 10s.
	DialTimeout time.Duration

	// RequestTimeout bounds a single request exchange. Default 15s.
	RequestTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// Client is the device-protocol transport of the bridge. It implements
// observer.Transport over go-coap, dialing lazily and re-dialing after
// a session reset. Confirmable delivery and retransmission are handled
// by the underlying library.
type Client struct {
	cfg Config

	mu   sync.Mutex
	conn *udpclient.ClientConn
}

// NewClient creates a transport for the given gateway. No connection is
// made until the first call.
func NewClient(cfg Config) (*Client, error) {
	cfg.applyDefaults()
	if cfg.Addr == "" {
		return nil, fmt.Errorf("coap: gateway address is required")
	}
	if (cfg.PSKIdentity == "") != (len(cfg.PSK) == 0) {
		return nil, fmt.Errorf("coap: PSK identity and key must be set together")
	}
	return &Client{cfg: cfg}, nil
}

// ensureConn returns the live connection, dialing with exponential
// backoff when none exists.
func (c *Client) ensureConn() (*udpclient.ClientConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}

	var conn *udpclient.ClientConn
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.cfg.DialTimeout

	err := backoff.Retry(func() error {
		var derr error
		conn, derr = c.dial()
		if derr != nil {
			logging.Debug("CoAP dial attempt failed",
				zap.String("addr", c.cfg.Addr),
				zap.Error(derr),
			)
		}
		return derr
	}, policy)
	if err != nil {
		return nil, &Error{Type: ErrTypeNetwork, Op: "dial", Addr: c.cfg.Addr, Err: err}
	}

	logging.Info("CoAP session established",
		zap.String("addr", c.cfg.Addr),
		zap.Bool("dtls", c.cfg.PSKIdentity != ""),
	)
	c.conn = conn
	return conn, nil
}

func (c *Client) dial() (*udpclient.ClientConn, error) {
	if c.cfg.PSKIdentity != "" {
		return dtls.Dial(c.cfg.Addr, &piondtls.Config{
			PSK: func(hint []byte) ([]byte, error) {
				return c.cfg.PSK, nil
			},
			PSKIdentityHint: []byte(c.cfg.PSKIdentity),
			CipherSuites:    []piondtls.CipherSuiteID{piondtls.TLS_PSK_WITH_AES_128_CCM_8},
		})
	}
	return udp.Dial(c.cfg.Addr)
}

// Ping issues a CoAP ping against the gateway.
func (c *Client) Ping(ctx context.Context) error {
	conn, err := c.ensureConn()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		return &Error{Type: classify(err), Op: "ping", Addr: c.cfg.Addr, Err: err}
	}
	return nil
}

// Get fetches a resource with a confirmable GET.
func (c *Client) Get(ctx context.Context, path string) (*observer.Response, error) {
	conn, err := c.ensureConn()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	msg, err := conn.Get(ctx, "/"+path)
	if err != nil {
		return nil, &Error{Type: classify(err), Op: "get", Addr: c.cfg.Addr, Err: err}
	}
	return decode(msg), nil
}

// Observe registers a long-lived observation of path. Notifications are
// delivered to onNotify until the session is reset. The subscription is
// owned by the connection; resetting the session cancels it implicitly.
func (c *Client) Observe(ctx context.Context, path string, onNotify func(*observer.Response)) error {
	conn, err := c.ensureConn()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	_, err = conn.Observe(ctx, "/"+path, func(msg *pool.Message) {
		onNotify(decode(msg))
	})
	if err != nil {
		return &Error{Type: classify(err), Op: "observe", Addr: c.cfg.Addr, Err: err}
	}
	return nil
}

// ResetSession drops the connection and all observations riding on it.
// The next call dials a fresh session.
func (c *Client) ResetSession() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			logging.Debug("Error closing CoAP session", zap.Error(err))
		}
		logging.Info("CoAP session dropped", zap.String("addr", c.cfg.Addr))
	}
}

// Close releases the connection. The client must not be used afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// decode maps a CoAP message onto the transport-neutral response the
// observer consumes.
func decode(msg *pool.Message) *observer.Response {
	resp := &observer.Response{
		Ok:            isSuccess(msg.Code()),
		ContentFormat: observer.FormatUnknown,
	}
	if mt, err := msg.ContentFormat(); err == nil {
		resp.ContentFormat = uint16(mt)
	}
	if body, err := msg.ReadBody(); err == nil {
		resp.Payload = body
	}
	return resp
}

// isSuccess reports whether code is in the CoAP 2.xx success class.
func isSuccess(code codes.Code) bool {
	return code >= codes.Created && code <= codes.Content
}
