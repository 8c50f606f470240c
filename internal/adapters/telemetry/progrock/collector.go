package progrock

import (
	"sync"

	"github.com/vito/progrock"
)

// CallStatus is the last known status of a recorded call.
type CallStatus int

const (
	// CallRunning is a call whose vertex has not completed yet.
	CallRunning CallStatus = iota
	// CallCompleted is a call that reached its target and returned without error.
	CallCompleted
	// CallShortCircuited is a call an interceptor answered without reaching the target.
	CallShortCircuited
	// CallFailed is a call that returned an error.
	CallFailed
)

// String returns the status label used in call traces.
func (s CallStatus) String() string {
	switch s {
	case CallCompleted:
		return "ok"
	case CallShortCircuited:
		return "short-circuit"
	case CallFailed:
		return "failed"
	default:
		return "running"
	}
}

// CallState is the collected view of one recorded call.
type CallState struct {
	ID     string
	Name   string
	Status CallStatus
	Error  string
}

// Collector is a progrock.Writer that folds status updates into per-call states,
// in the order the calls were first seen.
type Collector struct {
	mu    sync.Mutex
	calls []CallState
	index map[string]int
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{index: make(map[string]int)}
}

// WriteStatus merges the vertices of update.
func (c *Collector) WriteStatus(update *progrock.StatusUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, v := range update.Vertexes {
		i, ok := c.index[v.Id]
		if !ok {
			i = len(c.calls)
			c.index[v.Id] = i
			c.calls = append(c.calls, CallState{ID: v.Id, Name: v.Name, Status: CallRunning})
		}
		c.update(i, v)
	}
	return nil
}

func (c *Collector) update(i int, v *progrock.Vertex) {
	if v.Completed == nil {
		return
	}
	switch {
	case v.Error != nil:
		c.calls[i].Status = CallFailed
		c.calls[i].Error = *v.Error
	case v.Cached:
		c.calls[i].Status = CallShortCircuited
	default:
		c.calls[i].Status = CallCompleted
	}
}

// Close does nothing; collected calls stay readable.
func (c *Collector) Close() error { return nil }

// Calls returns a copy of the collected call states.
func (c *Collector) Calls() []CallState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CallState(nil), c.calls...)
}
