package app

import (
	"context"
	"fmt"
	"io"

	"go.trai.ch/interpose/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/engine/invocation"
	"go.trai.ch/interpose/internal/engine/proxy"
	"go.trai.ch/interpose/internal/sample"
	"go.trai.ch/zerr"
)

// Demo modes.
const (
	ModeDelegating = "delegating"
	ModeOverriding = "overriding"
)

// ErrUnknownMode is returned by Demo for a mode other than ModeDelegating or ModeOverriding.
var ErrUnknownMode = zerr.Wrap(domain.ErrConfiguration, "unknown demo mode")

// DemoOptions configures a demo run.
type DemoOptions struct {
	ConfigPath string
	Mode       string
	Selector   string
	Offset     int
}

type callTracer interface {
	Calls() []progrock.CallState
}

// Demo drives the sample proxies through a fixed call script and writes the
// results, the interceptor trace and the resolver counters to w.
func (a *App) Demo(ctx context.Context, opts DemoOptions, w io.Writer) error {
	s, err := a.newSession(opts.ConfigPath)
	if err != nil {
		return err
	}

	sel, err := sample.Selector(opts.Selector)
	if err != nil {
		return err
	}

	rec := sample.NewRecorder("audit")
	switch opts.Mode {
	case "", ModeDelegating:
		err = s.demoDelegating(w, rec, sel, opts.Offset)
	case ModeOverriding:
		err = s.demoOverriding(ctx, w, rec, sel)
	default:
		return zerr.With(zerr.Wrap(ErrUnknownMode, "invalid mode"), "mode", opts.Mode)
	}
	if err != nil {
		return zerr.Wrap(err, "demo failed")
	}

	_, _ = fmt.Fprintln(w, "\ntrace:")
	for _, line := range rec.Lines() {
		_, _ = fmt.Fprintf(w, "  %s\n", line)
	}

	if ct, ok := s.telemetry.(callTracer); ok {
		_, _ = fmt.Fprintln(w, "\ncalls:")
		for _, c := range ct.Calls() {
			if c.Error != "" {
				_, _ = fmt.Fprintf(w, "  %-32s %s: %s\n", c.Name, c.Status, c.Error)
				continue
			}
			_, _ = fmt.Fprintf(w, "  %-32s %s\n", c.Name, c.Status)
		}
	}

	st := s.resolver.Stats()
	_, _ = fmt.Fprintf(w, "\nresolver: %d entries, %d hits, %d misses, %d computations, %d failures\n",
		s.resolver.Len(), st.Hits, st.Misses, st.Computations, st.Failures)
	return nil
}

func (s *session) demoDelegating(w io.Writer, rec *sample.Recorder, sel invocation.Selector, offset int) error {
	memo := sample.NewMemo()
	calc, err := sample.NewCalculatorProxy(s.engine, sample.BasicCalculator{},
		[]invocation.Interceptor{rec, &sample.Offset{N: offset}, memo}, proxy.WithSelector(sel))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Add(2, 3) = %d\n", calc.Add(2, 3))
	_, _ = fmt.Fprintf(w, "Add(2, 3) = %d\n", calc.Add(2, 3))
	_, _ = fmt.Fprintf(w, "Sum(1, 2, 3, 4) = %d\n", calc.Sum(1, 2, 3, 4))
	for _, d := range [][2]int{{10, 2}, {1, 0}} {
		q, err := calc.Div(d[0], d[1])
		if err != nil {
			_, _ = fmt.Fprintf(w, "Div(%d, %d) failed: %v\n", d[0], d[1], err)
			continue
		}
		_, _ = fmt.Fprintf(w, "Div(%d, %d) = %d\n", d[0], d[1], q)
	}
	_, _ = fmt.Fprintf(w, "memo hits: %d\n", memo.Hits())
	return nil
}

func (s *session) demoOverriding(ctx context.Context, w io.Writer, rec *sample.Recorder, sel invocation.Selector) error {
	counter := sample.NewCounter()
	ledger, err := sample.NewAuditedLedger(s.engine, sample.NewLedger(),
		[]invocation.Interceptor{rec, counter}, proxy.WithSelector(sel))
	if err != nil {
		return err
	}

	ledger.Put("answer", 42)
	ledger.Put("name", "gopher")
	_, _ = fmt.Fprintf(w, "Len() = %d\n", ledger.Len())

	n, ok, err := sample.FindIn[int](ctx, ledger, "answer")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Find[int](answer) = %d, %t\n", n, ok)

	str, ok, err := sample.FindIn[string](ctx, ledger, "name")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Find[string](name) = %q, %t\n", str, ok)

	f, ok, err := sample.FindIn[float64](ctx, ledger, "answer")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Find[float64](answer) = %g, %t\n", f, ok)

	_, _ = fmt.Fprintf(w, "calls: Put=%d Len=%d Find=%d\n",
		counter.Count("Put"), counter.Count("Len"), counter.Count("Find"))
	return nil
}
