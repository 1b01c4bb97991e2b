package observer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/tradfri-bridge/internal/logging"
)

const (
	// DiscoveryPath is the root link-format resource describing the
	// gateway's resource tree.
	DiscoveryPath = ".well-known/core"

	// LinkFormat is the CoAP content format number for
	// application/link-format (RFC 6690).
	LinkFormat uint16 = 40

	// FormatUnknown marks a response that carried no content format option.
	FormatUnknown uint16 = 0xffff

	// failThreshold is the number of consecutive ping or discovery
	// failures tolerated before a full session reset.
	failThreshold = 3
)

// Response is the decoded result of a single device-protocol exchange,
// or of one observation notification.
type Response struct {
	// Ok reports whether the response code was in the success class.
	Ok bool

	// ContentFormat is the CoAP content format number of the payload,
	// or FormatUnknown when the response carried none.
	ContentFormat uint16

	// Payload is the raw response body. May be nil.
	Payload []byte
}

// Transport is the device-protocol client the observer drives. All calls
// are issued from the observer's task queue, one at a time.
type Transport interface {
	// Ping issues a liveness probe against the gateway.
	Ping(ctx context.Context) error

	// Get fetches a resource by its slash-separated path.
	Get(ctx context.Context, path string) (*Response, error)

	// Observe registers a long-lived subscription to path. onNotify is
	// invoked for every notification until the session is reset.
	Observe(ctx context.Context, path string, onNotify func(*Response)) error

	// ResetSession tears down the transport's internal session state.
	// The next call re-establishes it.
	ResetSession()
}

// Link describes one entry of a parsed discovery document.
type Link struct {
	// Observable reports whether the resource advertises the obs attribute.
	Observable bool
}

// LinkParser decodes a raw link-format document into a mapping from
// resource path (no leading slash) to link attributes.
type LinkParser func(doc string) (map[string]Link, error)

// Publisher is the message-bus boundary. Publishes are fire-and-forget
// with at-least-once delivery.
type Publisher interface {
	Publish(topic string, payload []byte, retain bool) error
}

// Config holds the observer configuration. The zero value of any field
// is replaced by its default.
type Config struct {
	// BaseURL identifies the gateway this observer is bound to, e.g.
	// "coaps://192.168.1.63:5684". Required.
	BaseURL string

	// PingInterval is the full period of one ping cycle. Must exceed
	// PingTimeout. Default 60s.
	PingInterval time.Duration

	// PingTimeout is how long a probe may remain unanswered before it
	// counts as a miss. Default 30s.
	PingTimeout time.Duration

	// DequeueInterval is the pause between successful task executions.
	// Default 100ms.
	DequeueInterval time.Duration

	// DiscoverInterval is the period of the discovery loop. A negative
	// value disables recurring discovery (the initial cycle still runs).
	// Default 5m.
	DiscoverInterval time.Duration

	// TopicPrefix is prepended to every resource path to form the bus
	// topic. Default "tradfri-raw".
	TopicPrefix string
}

func (c *Config) applyDefaults() {
	if c.PingInterval == 0 {
		c.PingInterval = 60 * time.Second
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 30 * time.Second
	}
	if c.DequeueInterval == 0 {
		c.DequeueInterval = 100 * time.Millisecond
	}
	if c.DiscoverInterval == 0 {
		c.DiscoverInterval = 5 * time.Minute
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "tradfri-raw"
	}
}

// Observer bridges one gateway's resource tree to the message bus. It
// discovers observable resources, subscribes to them, and republishes
// every notification under a topic derived from the resource path.
//
// All mutable state is owned by a single event-loop goroutine; timers
// and task completions post closures onto that loop.
type Observer struct {
	cfg   Config
	tr    Transport
	parse LinkParser
	bus   Publisher

	calls chan func()
	done  chan struct{}
	stop  sync.Once

	// Everything below is touched only on the loop goroutine.

	// gen is the session generation. Timer and completion closures
	// capture it and become no-ops when a reset has intervened.
	gen int

	queue      []Task
	running    bool
	drainTimer *time.Timer

	pingFail int

	discoverFail  int
	discoverTimer *time.Timer
	lastDiscover  string

	// observed maps resource path to a confirmed flag: false while the
	// registration task is pending, true once the observe call settled.
	observed map[string]bool

	resetting bool

	// Queue timing knobs, fixed in production, shortened in tests.
	taskTimeout    time.Duration
	timeoutBackoff time.Duration
	failBackoff    time.Duration
}

// New creates an Observer for a single gateway. It fails when the ping
// interval does not exceed the ping timeout, since the watchdog schedules
// the next cycle pingInterval-pingTimeout after the fail check.
func New(cfg Config, tr Transport, parse LinkParser, bus Publisher) (*Observer, error) {
	cfg.applyDefaults()
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("observer: base URL is required")
	}
	if cfg.PingInterval <= cfg.PingTimeout {
		return nil, fmt.Errorf("observer: ping interval (%s) must exceed ping timeout (%s)",
			cfg.PingInterval, cfg.PingTimeout)
	}
	if tr == nil || parse == nil || bus == nil {
		return nil, fmt.Errorf("observer: transport, parser and publisher are required")
	}

	return &Observer{
		cfg:            cfg,
		tr:             tr,
		parse:          parse,
		bus:            bus,
		calls:          make(chan func(), 64),
		done:           make(chan struct{}),
		observed:       make(map[string]bool),
		taskTimeout:    20 * time.Second,
		timeoutBackoff: 10 * time.Millisecond,
		failBackoff:    10 * time.Second,
	}, nil
}

// Start launches the event loop, the ping watchdog and the initial
// discovery cycle.
func (o *Observer) Start() {
	go o.loop()
	o.post(func() {
		o.pingCycle()
		o.discover()
	})
}

// Close stops the event loop. In-flight transport operations are not
// cancelled; pending queue entries are abandoned.
func (o *Observer) Close() {
	o.stop.Do(func() { close(o.done) })
}

// URL returns the base URL of the gateway this observer is bound to.
func (o *Observer) URL() string {
	return o.cfg.BaseURL
}

// Enqueue appends a task to the work queue. Safe for concurrent use.
func (o *Observer) Enqueue(t Task) {
	o.post(func() { o.enqueue(t) })
}

// Reset requests a full session reset.
func (o *Observer) Reset() {
	o.post(func() { o.reset("external request") })
}

func (o *Observer) loop() {
	for {
		select {
		case f := <-o.calls:
			f()
		case <-o.done:
			return
		}
	}
}

// post hands f to the event loop. Posts after Close are dropped.
func (o *Observer) post(f func()) {
	select {
	case o.calls <- f:
	case <-o.done:
	}
}

// after arms a timer that runs f on the event loop.
func (o *Observer) after(d time.Duration, f func()) *time.Timer {
	return time.AfterFunc(d, func() { o.post(f) })
}

// reset performs the full session teardown: transport session state,
// pending queue entries, drain and discovery timers, discovery snapshot,
// observation registry and both failure counters. The in-flight task, if
// any, is not cancelled; its settlement is discarded via the generation
// guard. Discovery is restarted; the ping watchdog keeps its own cycle.
// Runs on the loop goroutine only.
func (o *Observer) reset(reason string) {
	if o.resetting {
		return
	}
	o.resetting = true
	defer func() { o.resetting = false }()

	logging.LogSessionReset(o.cfg.BaseURL, reason)

	o.gen++
	o.tr.ResetSession()

	if n := len(o.queue); n > 0 {
		logging.Debug("Dropping pending tasks", zap.Int("count", n))
	}
	o.queue = nil
	o.running = false
	if o.drainTimer != nil {
		o.drainTimer.Stop()
		o.drainTimer = nil
	}
	if o.discoverTimer != nil {
		o.discoverTimer.Stop()
		o.discoverTimer = nil
	}

	o.lastDiscover = ""
	o.observed = make(map[string]bool)
	o.pingFail = 0
	o.discoverFail = 0

	o.discover()
}

// topicFor derives the bus topic for a resource path, stripping any
// leading slashes from the path.
func (o *Observer) topicFor(path string) string {
	return o.cfg.TopicPrefix + "/" + strings.TrimLeft(path, "/")
}
