package observer

import (
	"context"

	"go.uber.org/zap"

	"github.com/muurk/tradfri-bridge/internal/logging"
)

// discover runs one firing of the discovery loop. When the failure
// counter has reached the threshold it zeroes the counter and performs a
// session reset instead (the reset restarts discovery). Otherwise it
// enqueues a task that fetches the root discovery document; processing
// happens in finishDiscovery once the fetch settles. Runs on the loop
// goroutine only.
func (o *Observer) discover() {
	if o.discoverTimer != nil {
		o.discoverTimer.Stop()
		o.discoverTimer = nil
	}

	if o.discoverFail >= failThreshold {
		o.discoverFail = 0
		o.reset("discovery failures")
		return
	}

	g := o.gen
	o.enqueue(Task{
		Name: "discover",
		// Discovery failures are tracked by the loop's own counter, not
		// by queue retries, so the task always settles successfully.
		Run: func() error {
			resp, err := o.tr.Get(context.Background(), DiscoveryPath)
			o.post(func() {
				if g != o.gen {
					return
				}
				o.finishDiscovery(resp, err)
			})
			return nil
		},
	})
}

// finishDiscovery processes the result of a discovery fetch and arms the
// next cycle. An unchanged document is a no-op; a changed one is
// republished for the root path, snapshotted, and, when it has success
// status and link-format content, parsed so every observable link gets
// an observation registered.
func (o *Observer) finishDiscovery(resp *Response, err error) {
	defer o.scheduleDiscover()

	if err != nil {
		o.discoverFail++
		logging.Warn("Discovery fetch failed",
			zap.String("gateway", o.cfg.BaseURL),
			zap.Int("discover_fail", o.discoverFail),
			zap.Error(err),
		)
		return
	}

	doc := string(resp.Payload)
	if doc == o.lastDiscover {
		logging.Debug("Discovery document unchanged")
		return
	}

	o.onUpdate(DiscoveryPath, resp)
	o.lastDiscover = doc

	if !resp.Ok || resp.ContentFormat != LinkFormat {
		o.discoverFail++
		logging.Warn("Unexpected discovery response",
			zap.Bool("ok", resp.Ok),
			zap.Uint16("content_format", resp.ContentFormat),
			zap.Int("discover_fail", o.discoverFail),
		)
		return
	}

	links, perr := o.parse(doc)
	if perr != nil {
		o.discoverFail++
		logging.Warn("Failed to parse discovery document",
			zap.Int("discover_fail", o.discoverFail),
			zap.Error(perr),
		)
		return
	}

	for path, link := range links {
		if link.Observable {
			o.observe(path)
		}
	}
}

// scheduleDiscover arms the next discovery firing, unless recurring
// discovery is disabled.
func (o *Observer) scheduleDiscover() {
	if o.cfg.DiscoverInterval <= 0 {
		return
	}
	g := o.gen
	o.discoverTimer = o.after(o.cfg.DiscoverInterval, func() {
		if g != o.gen {
			return
		}
		o.discover()
	})
}
