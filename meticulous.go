// Package meticulous is an experiment bookkeeping core: it wraps the
// execution of a host program and records, to a deterministic on-disk
// layout, its command line, parsed arguments and defaults, VCS state,
// free-form metadata, start/end times, terminal disposition, and captured
// stdout/stderr, and supports resuming a previously recorded experiment.
package meticulous

import "time"

// Status is an experiment's terminal (or in-flight) disposition.
type Status string

const (
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// VCS is the external collaborator the Lifecycle Controller consults for
// working-tree state at experiment creation time. internal/vcsutil.Adapter
// is the git-backed default; tests supply a stub implementation.
type VCS interface {
	HeadSHA() (string, error)
	HeadMessage() (string, error)
	IsDirty() (bool, error)
}

// DefaultExperimentsDirectory is used when the host doesn't pass
// --experiments-directory and no meticulous.yaml override is in effect.
const DefaultExperimentsDirectory = "experiments"

func formatISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000000")
}

func parseISO(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02T15:04:05.000000", s)
}
