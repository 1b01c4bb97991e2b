package observer

import (
	"time"

	"go.uber.org/zap"

	"github.com/muurk/tradfri-bridge/internal/logging"
)

// Task is a deferred unit of work producing success or failure. The
// queue owns a task from enqueue until it settles or is requeued. Run is
// executed off the event loop and must not touch observer state.
type Task struct {
	Name string
	Run  func() error
}

// enqueue appends t to the FIFO. If the queue was idle, draining starts
// on the next turn of the scheduler. Runs on the loop goroutine only.
func (o *Observer) enqueue(t Task) {
	o.queue = append(o.queue, t)
	logging.LogTask(t.Name, "enqueued", zap.Int("depth", len(o.queue)))
	if !o.running && o.drainTimer == nil {
		o.scheduleDrain(0)
	}
}

func (o *Observer) scheduleDrain(d time.Duration) {
	g := o.gen
	o.drainTimer = o.after(d, func() {
		if g != o.gen {
			return
		}
		o.drainTimer = nil
		o.drain()
	})
}

// drain pops and executes the head task. At most one task is ever
// mid-flight; a task that fails or exceeds the execution timeout moves
// to the tail of the queue and is retried later. Only the first of the
// timeout and the settlement acts; the other is a no-op.
func (o *Observer) drain() {
	if o.running || len(o.queue) == 0 {
		return
	}

	t := o.queue[0]
	o.queue = o.queue[1:]
	o.running = true
	logging.LogTask(t.Name, "running")

	g := o.gen
	settled := false

	timeout := o.after(o.taskTimeout, func() {
		if settled || g != o.gen {
			return
		}
		settled = true
		// The task may still complete later; only its queue slot is
		// abandoned here.
		logging.Warn("Task execution timed out, requeueing",
			zap.String("task", t.Name),
			zap.Duration("timeout", o.taskTimeout),
		)
		o.running = false
		o.queue = append(o.queue, t)
		o.scheduleDrain(o.timeoutBackoff)
	})

	go func() {
		err := t.Run()
		o.post(func() {
			if settled || g != o.gen {
				return
			}
			settled = true
			timeout.Stop()
			o.running = false

			if err != nil {
				logging.Warn("Task failed, requeueing",
					zap.String("task", t.Name),
					zap.Error(err),
				)
				o.queue = append(o.queue, t)
				o.scheduleDrain(o.failBackoff)
				return
			}

			logging.LogTask(t.Name, "done")
			if len(o.queue) > 0 {
				o.scheduleDrain(o.cfg.DequeueInterval)
			}
		})
	}()
}
