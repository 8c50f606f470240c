package progrock

import (
	"fmt"

	"github.com/vito/progrock"
	"go.trai.ch/interpose/internal/core/domain"
)

// Vertex is the progrock record of one proxied call. It implements ports.Vertex.
type Vertex struct {
	name   string
	vertex *progrock.VertexRecorder
}

// Name returns the recorded call name.
func (v *Vertex) Name() string { return v.name }

// Log writes msg to the call's output stream. Warnings and errors go to stderr.
func (v *Vertex) Log(level domain.LogLevel, msg string) {
	w := v.vertex.Stdout()
	if level >= domain.LogLevelWarn {
		w = v.vertex.Stderr()
	}
	_, _ = fmt.Fprintf(w, "[%s] %s\n", level, msg)
}

// Cached marks a call that finished without reaching its target.
func (v *Vertex) Cached() { v.vertex.Cached() }

// Complete ends the call with its outcome.
func (v *Vertex) Complete(err error) { v.vertex.Done(err) }
