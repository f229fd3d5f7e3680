package meticulous

import "time"

// Option parameterizes FromParser beyond the on-disk contract spec.md §6
// requires; none of these change what gets written for callers that don't
// supply them.
type Option func(*creationOptions)

type creationOptions struct {
	vcs                  VCS
	clock                func() time.Time
	argsSchemaDefault    string
	snapshotGlobsDefault []string
}

// WithVCS overrides the git-backed default VCS adapter, for tests and for
// hosts whose working tree isn't rooted at the process's cwd.
func WithVCS(v VCS) Option {
	return func(o *creationOptions) { o.vcs = v }
}

// WithClock overrides time.Now, for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(o *creationOptions) { o.clock = clock }
}

// WithArgsSchema supplies a default --args-schema path used when the host
// didn't pass the flag explicitly.
func WithArgsSchema(path string) Option {
	return func(o *creationOptions) { o.argsSchemaDefault = path }
}

// WithSnapshotGlobs supplies default --snapshot-glob patterns used when
// the host didn't pass any explicitly.
func WithSnapshotGlobs(patterns ...string) Option {
	return func(o *creationOptions) { o.snapshotGlobsDefault = patterns }
}
