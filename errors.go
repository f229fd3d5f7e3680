package meticulous

import "fmt"

// DirtyRepoError is returned by FromParser when the VCS Adapter reports a
// dirty working tree; no experiment directory is allocated.
type DirtyRepoError struct{}

func (e *DirtyRepoError) Error() string {
	return "meticulous: working tree is dirty"
}

// MismatchedArgsError is returned when resuming an existing experiment id
// whose stored args.json differs from the current invocation's parsed
// host args.
type MismatchedArgsError struct {
	Stored  map[string]any
	Current map[string]any
}

func (e *MismatchedArgsError) Error() string {
	return fmt.Sprintf("meticulous: resumed experiment's stored args do not match this invocation: stored=%v current=%v", e.Stored, e.Current)
}

// MismatchedCommitError is returned when resuming an existing experiment
// id whose stored githead-sha differs from the current VCS head.
type MismatchedCommitError struct {
	Stored  string
	Current string
}

func (e *MismatchedCommitError) Error() string {
	return fmt.Sprintf("meticulous: resumed experiment's stored githead-sha %q does not match current head %q", e.Stored, e.Current)
}

// SchemaValidationError is returned when --args-schema is set and the
// parsed host args fail validation against it, before any directory is
// allocated.
type SchemaValidationError struct {
	Path string
	Err  error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("meticulous: args failed schema validation against %s: %v", e.Path, e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }
