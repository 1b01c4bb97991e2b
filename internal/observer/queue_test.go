package observer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder tracks task executions and enforces the one-in-flight rule.
type recorder struct {
	mu       sync.Mutex
	order    []string
	inFlight int
	overlap  bool
}

func (r *recorder) task(name string, d time.Duration, err error) Task {
	return Task{
		Name: name,
		Run: func() error {
			r.mu.Lock()
			r.inFlight++
			if r.inFlight > 1 {
				r.overlap = true
			}
			r.mu.Unlock()

			time.Sleep(d)

			r.mu.Lock()
			r.order = append(r.order, name)
			r.inFlight--
			r.mu.Unlock()
			return err
		},
	}
}

func (r *recorder) executed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *recorder) overlapped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlap
}

func TestQueueExecutesFIFO(t *testing.T) {
	o := newTestObserver(t, Config{DequeueInterval: time.Millisecond}, newFakeTransport(), emptyParser, &fakeBus{})
	rec := &recorder{}

	for _, name := range []string{"a", "b", "c", "d"} {
		o.Enqueue(rec.task(name, 2*time.Millisecond, nil))
	}

	require.Eventually(t, func() bool {
		return len(rec.executed()) == 4
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"a", "b", "c", "d"}, rec.executed())
	assert.False(t, rec.overlapped(), "tasks must never run concurrently")
}

func TestQueueFailedTaskMovesToTail(t *testing.T) {
	o := newTestObserver(t, Config{DequeueInterval: time.Millisecond}, newFakeTransport(), emptyParser, &fakeBus{})
	rec := &recorder{}

	var mu sync.Mutex
	failures := 1
	failing := Task{
		Name: "flaky",
		Run: func() error {
			mu.Lock()
			defer mu.Unlock()
			if failures > 0 {
				failures--
				return errors.New("boom")
			}
			return rec.task("flaky", 0, nil).Run()
		},
	}

	o.Enqueue(failing)
	o.Enqueue(rec.task("steady", 0, nil))

	require.Eventually(t, func() bool {
		return len(rec.executed()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	// The failing task lost its slot and completed after the task that
	// was queued behind it.
	assert.Equal(t, []string{"steady", "flaky"}, rec.executed())
}

func TestQueueTimedOutTaskIsRequeued(t *testing.T) {
	o := newTestObserver(t, Config{DequeueInterval: time.Millisecond}, newFakeTransport(), emptyParser, &fakeBus{})
	o.taskTimeout = 20 * time.Millisecond

	var mu sync.Mutex
	runs := 0
	release := make(chan struct{})
	slow := Task{
		Name: "slow",
		Run: func() error {
			mu.Lock()
			runs++
			first := runs == 1
			mu.Unlock()
			if first {
				// Exceed the execution timeout on the first attempt only.
				<-release
			}
			return nil
		},
	}

	o.Enqueue(slow)

	// The first attempt times out and the task moves to the tail.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return runs == 2
	}, 2*time.Second, 5*time.Millisecond)
	close(release)

	// The abandoned first attempt completing later must not disturb the
	// queue.
	time.Sleep(50 * time.Millisecond)
	onLoop(t, o, func() {
		assert.False(t, o.running)
		assert.Empty(t, o.queue)
	})
}

func TestQueueIdleRestartsOnEnqueue(t *testing.T) {
	o := newTestObserver(t, Config{DequeueInterval: time.Millisecond}, newFakeTransport(), emptyParser, &fakeBus{})
	rec := &recorder{}

	o.Enqueue(rec.task("first", 0, nil))
	require.Eventually(t, func() bool {
		return len(rec.executed()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Queue is now idle with no drain timer.
	onLoop(t, o, func() {
		assert.Nil(t, o.drainTimer)
		assert.False(t, o.running)
	})

	o.Enqueue(rec.task("second", 0, nil))
	require.Eventually(t, func() bool {
		return len(rec.executed()) == 2
	}, 2*time.Second, 5*time.Millisecond)
}
