package observer

import (
	"context"

	"go.uber.org/zap"

	"github.com/muurk/tradfri-bridge/internal/logging"
)

// pingCycle runs one period of the liveness watchdog. Each cycle arms a
// fail check pingTimeout from now and enqueues exactly one probe task.
// If the probe has not settled successfully when the check fires, the
// miss counter is incremented; three consecutive misses force a session
// reset and zero the counter.
//
// The watchdog is started once at construction and perpetuates itself
// across session resets, so the next cycle is armed unconditionally
// (pingInterval-pingTimeout after the fail check, for a full period of
// pingInterval). Runs on the loop goroutine only.
func (o *Observer) pingCycle() {
	done := false

	o.after(o.cfg.PingTimeout, func() {
		if !done {
			o.pingFail++
			logging.Warn("Ping missed",
				zap.String("gateway", o.cfg.BaseURL),
				zap.Int("ping_fail", o.pingFail),
			)
			if o.pingFail >= failThreshold {
				o.pingFail = 0
				o.reset("ping failures")
			}
		}
		o.after(o.cfg.PingInterval-o.cfg.PingTimeout, o.pingCycle)
	})

	o.enqueue(Task{
		Name: "ping",
		Run: func() error {
			err := o.tr.Ping(context.Background())
			if err == nil {
				o.post(func() { done = true })
			}
			return err
		},
	})
}
