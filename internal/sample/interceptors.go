package sample

import (
	"fmt"
	"strings"
	"sync"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports"
	"go.trai.ch/interpose/internal/engine/invocation"
)

// Recorder writes one line before and one after every call it sees.
type Recorder struct {
	Name string

	mu    sync.Mutex
	lines []string
}

// NewRecorder creates a Recorder whose lines are prefixed with name.
func NewRecorder(name string) *Recorder {
	return &Recorder{Name: name}
}

// Intercept implements invocation.Interceptor.
func (r *Recorder) Intercept(inv *invocation.Invocation) error {
	call := describeCall(inv)
	r.add(inv, "→ "+call)

	err := inv.Proceed()
	switch {
	case err != nil:
		r.add(inv, "✗ "+call+": "+err.Error())
	case inv.HasReturnValue():
		r.add(inv, "← "+call+" = "+formatValues(inv.Results()))
	default:
		r.add(inv, "← "+call)
	}
	return err
}

func (r *Recorder) add(inv *invocation.Invocation, line string) {
	if v, ok := ports.VertexFromContext(inv.Context()); ok {
		v.Log(domain.LogLevelInfo, line)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, "["+r.Name+"] "+line)
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Counter counts calls per method.
type Counter struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewCounter creates an empty Counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Intercept implements invocation.Interceptor.
func (c *Counter) Intercept(inv *invocation.Invocation) error {
	c.mu.Lock()
	c.counts[inv.Method().Name()]++
	c.mu.Unlock()
	return inv.Proceed()
}

// Count returns the number of calls of the method called name.
func (c *Counter) Count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

// Offset adds N to every int result.
type Offset struct {
	N int
}

// Intercept implements invocation.Interceptor.
func (o *Offset) Intercept(inv *invocation.Invocation) error {
	if err := inv.Proceed(); err != nil {
		return err
	}
	values, err := inv.ReturnValues()
	if err != nil {
		// Short-circuited further down without a value.
		return nil
	}
	for i, v := range values {
		if n, ok := v.(int); ok {
			values[i] = n + o.N
		}
	}
	inv.SetReturnValue(values...)
	return nil
}

// Memo answers repeated calls with equal arguments from memory, without
// reaching the target. Only successful calls are remembered.
type Memo struct {
	mu      sync.Mutex
	results map[string][]any
	hits    int
}

// NewMemo creates an empty Memo.
func NewMemo() *Memo {
	return &Memo{results: make(map[string][]any)}
}

// Intercept implements invocation.Interceptor.
func (m *Memo) Intercept(inv *invocation.Invocation) error {
	key := describeCall(inv)

	m.mu.Lock()
	cached, ok := m.results[key]
	if ok {
		m.hits++
	}
	m.mu.Unlock()
	if ok {
		inv.SetReturnValue(cached...)
		return nil
	}

	if err := inv.Proceed(); err != nil {
		return err
	}
	values, err := inv.ReturnValues()
	if err != nil {
		return nil
	}

	m.mu.Lock()
	m.results[key] = values
	m.mu.Unlock()
	return nil
}

// Hits returns the number of calls answered from memory.
func (m *Memo) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

func describeCall(inv *invocation.Invocation) string {
	m := inv.Method()
	name := m.Name()
	if m.IsClosed() {
		args := make([]string, 0, m.Arity())
		for _, t := range m.TypeArgs() {
			args = append(args, t.String())
		}
		name += "[" + strings.Join(args, ", ") + "]"
	}
	return name + "(" + formatValues(inv.Arguments()) + ")"
}

func formatValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, ", ")
}
