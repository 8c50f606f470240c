package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.trai.ch/interpose/internal/adapters/resolver" //nolint:depguard // Wired in app layer
	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/zerr"
)

// InspectOptions configures an inspect run.
type InspectOptions struct {
	ConfigPath string
	JSON       bool
	// SnapshotPath overrides the snapshot path of the configuration.
	SnapshotPath string
}

// Report is the JSON form of an inspect run.
type Report struct {
	Entries  []domain.ResolutionRecord `json:"entries"`
	Stats    resolver.Stats            `json:"stats"`
	Previous int                       `json:"previous,omitempty"`
	Added    int                       `json:"added,omitempty"`
}

// Inspect warms the resolution cache for the sample types and writes its entries to w.
// When a snapshot path is configured, the entries are compared with the previous
// snapshot and then saved in its place.
func (a *App) Inspect(ctx context.Context, opts InspectOptions, w io.Writer) error {
	s, err := a.newSession(opts.ConfigPath)
	if err != nil {
		return err
	}

	if err := s.warm(ctx); err != nil {
		return zerr.Wrap(err, "failed to warm resolution cache")
	}

	report := Report{Entries: s.resolver.Entries(), Stats: s.resolver.Stats()}

	path := opts.SnapshotPath
	if path == "" {
		path = s.cfg.Snapshot.Path
	}
	if path != "" {
		if err := a.compareAndSave(path, &report); err != nil {
			return err
		}
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return writeTable(w, report, path)
}

func (a *App) compareAndSave(path string, report *Report) error {
	store, err := a.snapshots(path)
	if err != nil {
		return zerr.Wrap(err, "failed to open snapshot store")
	}

	previous, err := store.Load()
	if err != nil {
		return zerr.Wrap(err, "failed to load snapshot")
	}

	seen := make(map[string]struct{}, len(previous))
	for _, r := range previous {
		seen[recordKey(r)] = struct{}{}
	}
	report.Previous = len(previous)
	for _, r := range report.Entries {
		if _, ok := seen[recordKey(r)]; !ok {
			report.Added++
		}
	}

	if err := store.Save(report.Entries); err != nil {
		return zerr.Wrap(err, "failed to save snapshot")
	}
	a.logger.Debug(fmt.Sprintf("saved %d resolution records to %s", len(report.Entries), path))
	return nil
}

func recordKey(r domain.ResolutionRecord) string {
	return r.Method + "\x00" + r.Type + "\x00" + r.Dispatch
}

func writeTable(w io.Writer, report Report, snapshotPath string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "METHOD\tTYPE\tDISPATCH\tOWNER\tPATH")
	for _, r := range report.Entries {
		owner := r.Owner
		if owner == "" {
			owner = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Method, r.Type, r.Dispatch, owner, formatPath(r.Path))
	}
	if err := tw.Flush(); err != nil {
		return zerr.Wrap(err, "failed to write table")
	}

	_, _ = fmt.Fprintf(w, "\n%d entries, %d computations, %d failures\n",
		len(report.Entries), report.Stats.Computations, report.Stats.Failures)
	if snapshotPath != "" {
		_, _ = fmt.Fprintf(w, "snapshot %s: %d previous, %d new\n", snapshotPath, report.Previous, report.Added)
	}
	return nil
}

func formatPath(path []int) string {
	if len(path) == 0 {
		return "-"
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".")
}
