package scratchpad

import (
	"time"

	"github.com/marcus/scratchpad/internal/host"
)

const defaultCoalesceWindow = 50 * time.Millisecond

// saveCoalescer batches rapid focus-loss events into one save per note.
// Every Add restarts the quiet period; when it ends without another Add, each
// pending note is saved once.
//
// The host scheduler cannot cancel a timer, so a generation counter makes
// every flush but the latest a no-op.
type saveCoalescer struct {
	sched   host.Scheduler
	window  time.Duration
	pending map[string]host.BufferID // path -> buffer
	gen     uint64
	save    func(path string, buf host.BufferID)
}

func newSaveCoalescer(sched host.Scheduler, window time.Duration, save func(string, host.BufferID)) *saveCoalescer {
	if window == 0 {
		window = defaultCoalesceWindow
	}
	return &saveCoalescer{
		sched:   sched,
		window:  window,
		pending: make(map[string]host.BufferID),
		save:    save,
	}
}

// Add queues buf for saving to path and restarts the quiet period.
func (c *saveCoalescer) Add(path string, buf host.BufferID) {
	c.pending[path] = buf
	c.gen++
	gen := c.gen
	c.sched.After(c.window, func() { c.flush(gen) })
}

// flush saves everything pending if no Add happened since gen.
func (c *saveCoalescer) flush(gen uint64) {
	if gen != c.gen {
		return
	}
	pending := c.pending
	c.pending = make(map[string]host.BufferID)
	for path, buf := range pending {
		c.save(path, buf)
	}
}

// Drop forgets a pending save of path, e.g. after it was saved directly.
func (c *saveCoalescer) Drop(path string) {
	delete(c.pending, path)
}

// Stop drops pending saves.
func (c *saveCoalescer) Stop() {
	c.gen++
	c.pending = make(map[string]host.BufferID)
}

// Pending reports how many notes wait for a save.
func (c *saveCoalescer) Pending() int { return len(c.pending) }
