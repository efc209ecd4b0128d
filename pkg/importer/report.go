package importer

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/driver"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
)

// Report summarizes one import run.
type Report struct {
	RunID       string `json:"run_id"`
	Mode        Mode   `json:"mode"`
	Source      string `json:"source"`
	Destination string `json:"destination"`

	// Documents counts the documents read, including failed ones.
	Documents int `json:"documents"`

	// Constructed counts committed objects by kind.
	Constructed map[string]int `json:"constructed"`

	// Passes counts the iterations of each resolve pass.
	Passes map[string]int `json:"passes"`

	// Skipped counts level objects of unknown classes.
	Skipped map[string]int `json:"skipped,omitempty"`

	Unresolved  []UnresolvedEntry `json:"unresolved"`
	Unsupported []string          `json:"unsupported"`

	Diagnostics *t3derrors.ErrorList `json:"-"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

func newReport(runID string, req Request) *Report {
	return &Report{
		RunID:       runID,
		Mode:        req.Mode,
		Source:      req.Source,
		Destination: req.Destination,
		Constructed: make(map[string]int),
		Passes:      make(map[string]int),
		Skipped:     make(map[string]int),
		StartedAt:   time.Now(),
	}
}

// UnresolvedEntry is a reference no pass could satisfy.
type UnresolvedEntry struct {
	Kind     string `json:"kind"`
	Location string `json:"location"`
	Name     string `json:"name"`

	// Path is where the object was expected in the store.
	Path string `json:"path"`
}

// String returns the line reported for the entry.
func (e UnresolvedEntry) String() string {
	return fmt.Sprintf("Failed to find %s '%s'", e.Kind, e.Path)
}

// DiagnosticCounts returns the number of diagnostics per type.
func (r *Report) DiagnosticCounts() map[t3derrors.ErrorType]int {
	counts := make(map[t3derrors.ErrorType]int)
	if r.Diagnostics == nil {
		return counts
	}
	for _, err := range r.Diagnostics.Errors {
		counts[err.Type]++
	}
	return counts
}

// TotalConstructed returns the number of committed objects.
func (r *Report) TotalConstructed() int {
	n := 0
	for _, c := range r.Constructed {
		n += c
	}
	return n
}

// collect fills the unresolved and unsupported sections from env.
func (r *Report) collect(env *driver.Env) {
	r.Unresolved = r.Unresolved[:0]
	for ref := range env.Resolver.Unresolved() {
		r.Unresolved = append(r.Unresolved, UnresolvedEntry{
			Kind:     ref.Kind(),
			Location: ref.Location(),
			Name:     ref.Name(),
			Path:     assets.ObjectPath(env.PackagePath(ref.Location()), ref.Name()),
		})
	}
	slices.SortFunc(r.Unresolved, func(a, b UnresolvedEntry) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Kind, b.Kind))
	})

	r.Unsupported = r.Unsupported[:0]
	for _, err := range env.Diagnostics.ByType(t3derrors.ErrorTypeUnsupported) {
		r.Unsupported = append(r.Unsupported, err.Message)
	}
	r.Diagnostics = env.Diagnostics
}

// Reporter receives the unresolved references at the end of a run.
type Reporter interface {
	ReportUnresolved(ctx context.Context, entries []UnresolvedEntry) error
}

// LogReporter writes one warning per unresolved reference.
type LogReporter struct {
	Logger *slog.Logger
}

// ReportUnresolved implements Reporter.
func (r *LogReporter) ReportUnresolved(ctx context.Context, entries []UnresolvedEntry) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, e := range entries {
		logger.WarnContext(ctx, e.String(),
			"kind", e.Kind,
			"path", e.Path,
		)
	}
	return nil
}
