package meticulous

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AshwinParanjape/meticulous/internal/argschema"
	"github.com/AshwinParanjape/meticulous/internal/argsurface"
	"github.com/AshwinParanjape/meticulous/internal/checksum"
	"github.com/AshwinParanjape/meticulous/internal/expconfig"
	"github.com/AshwinParanjape/meticulous/internal/expdir"
	"github.com/AshwinParanjape/meticulous/internal/registry"
	"github.com/AshwinParanjape/meticulous/internal/snapshot"
	"github.com/AshwinParanjape/meticulous/internal/teestream"
	"github.com/AshwinParanjape/meticulous/internal/vcsutil"
)

// liveRegistry is the engine's single process-wide registry of
// not-yet-finalized experiments (spec.md §5). Registration and
// deregistration are mutex-guarded by internal/registry; the engine itself
// assumes single-threaded use from the host, matching spec.md §5.
var liveRegistry = registry.New()

// pendingTraceback carries the traceback text for the next forced
// DrainLIFO call made from Run's top-level panic recovery. It is
// process-wide state, safe only because Run's recover-then-drain sequence
// is synchronous and the engine is single-threaded by contract (spec.md
// §5); it is reset immediately after the drain that consumes it.
var pendingTraceback string

// Experiment is a single recorded invocation of the host program,
// materialized as a directory of artifacts under RootDir (spec.md §3).
type Experiment struct {
	RootDir        string
	ID             string
	CurExpDir      string
	Args           map[string]any
	DefaultArgs    map[string]any
	Command        string
	Description    string
	GitHeadSHA     string
	GitHeadMessage string
	StartTime      time.Time
	EndTime        time.Time
	Status         Status
	ErrorPayload   string

	// InvocationUID and ArgsChecksum are SPEC_FULL.md §3's additive
	// fields. InvocationUID is minted fresh for this invocation even when
	// ID refers to a resumed, pre-existing directory.
	InvocationUID string
	ArgsChecksum  string

	mu        sync.Mutex
	finished  bool
	stdoutTee *teestream.Tee
	stderrTee *teestream.Tee
	handle    *registry.Handle
	clock     func() time.Time
}

// FromParser runs the Lifecycle Controller's creation procedure (spec.md
// §4.4): parse via the Argument Surface, consult the VCS Adapter, allocate
// or resume curexpdir, write or verify the initial artifacts, install the
// Stream Capturer, and register the experiment for exit-time finalization.
//
// parser must already have had AddArgumentGroup attached. If argList is
// nil, the process's actual argument vector (os.Args[1:]) is used.
func FromParser(parser *argsurface.Parser, argList []string, opts ...Option) (*Experiment, error) {
	o := &creationOptions{clock: time.Now}
	for _, fn := range opts {
		fn(o)
	}

	if argList == nil {
		argList = os.Args[1:]
	}

	hostArgs, engineArgs, defaultArgs, command, err := argsurface.Parse(parser, argList)
	if err != nil {
		return nil, err
	}

	cfg, err := expconfig.Load("meticulous.yaml")
	if err != nil {
		return nil, err
	}

	experimentsDir, _ := engineArgs["experiments_directory"].(string)
	if experimentsDir == "" {
		experimentsDir = DefaultExperimentsDirectory
	}
	if !flagPresent(argList, "--experiments-directory") && cfg.ExperimentsDirectory != "" {
		experimentsDir = cfg.ExperimentsDirectory
	}

	explicitID, _ := engineArgs["experiment_id"].(string)

	description, _ := engineArgs["description"].(string)
	if !flagPresent(argList, "--description") && cfg.Description != "" {
		description = cfg.Description
	}

	argsSchemaPath, _ := engineArgs["args_schema"].(string)
	if argsSchemaPath == "" {
		argsSchemaPath = cfg.ArgsSchema
	}
	if argsSchemaPath == "" {
		argsSchemaPath = o.argsSchemaDefault
	}

	snapshotGlobs, _ := engineArgs["snapshot_glob"].([]string)
	if len(snapshotGlobs) == 0 {
		snapshotGlobs = cfg.SnapshotGlobs
	}
	if len(snapshotGlobs) == 0 {
		snapshotGlobs = o.snapshotGlobsDefault
	}

	if argsSchemaPath != "" {
		if err := argschema.Validate(argsSchemaPath, hostArgs); err != nil {
			return nil, &SchemaValidationError{Path: argsSchemaPath, Err: err}
		}
	}

	rootDir, err := filepath.Abs(experimentsDir)
	if err != nil {
		return nil, err
	}

	vcs := o.vcs
	if vcs == nil {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		vcs = vcsutil.New(cwd)
	}
	dirty, err := vcs.IsDirty()
	if err != nil {
		return nil, err
	}
	if dirty {
		return nil, &DirtyRepoError{}
	}
	headSHA, err := vcs.HeadSHA()
	if err != nil {
		return nil, err
	}
	headMessage, err := vcs.HeadMessage()
	if err != nil {
		return nil, err
	}

	alloc, err := expdir.Allocate(rootDir, explicitID)
	if err != nil {
		return nil, err
	}

	argsJSON, err := json.Marshal(hostArgs)
	if err != nil {
		return nil, err
	}

	exp := &Experiment{
		RootDir:        rootDir,
		ID:             alloc.ID,
		CurExpDir:      alloc.Dir,
		Args:           hostArgs,
		DefaultArgs:    defaultArgs,
		Command:        command,
		GitHeadSHA:     headSHA,
		GitHeadMessage: headMessage,
		Status:         StatusRunning,
		InvocationUID:  ulid.Make().String(),
		ArgsChecksum:   checksum.Hex(argsJSON),
		clock:          o.clock,
	}

	if alloc.Created {
		exp.Description = description
		exp.StartTime = o.clock()
		if err := exp.writeCreationArtifacts(); err != nil {
			return nil, err
		}
		if len(snapshotGlobs) > 0 {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			if err := snapshot.Capture(cwd, snapshotGlobs, filepath.Join(exp.CurExpDir, "snapshot")); err != nil {
				return nil, err
			}
		}
	} else {
		if err := exp.resumeCheck(hostArgs, headSHA); err != nil {
			return nil, err
		}
		if err := exp.writeStatus(StatusRunning, ""); err != nil {
			return nil, err
		}
	}

	stdoutTee, err := teestream.Install(teestream.Stdout, filepath.Join(exp.CurExpDir, "stdout"))
	if err != nil {
		return nil, err
	}
	stderrTee, err := teestream.Install(teestream.Stderr, filepath.Join(exp.CurExpDir, "stderr"))
	if err != nil {
		_ = stdoutTee.Close()
		return nil, err
	}
	exp.stdoutTee = stdoutTee
	exp.stderrTee = stderrTee

	exp.handle = liveRegistry.Register(func(forced bool) {
		if forced {
			exp.finalize(StatusError, pendingTraceback)
		} else {
			exp.finalize(StatusSuccess, "")
		}
	})

	return exp, nil
}

func (e *Experiment) writeCreationArtifacts() error {
	if err := writeJSON(filepath.Join(e.CurExpDir, "args.json"), e.Args); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(e.CurExpDir, "default_args.json"), e.DefaultArgs); err != nil {
		return err
	}
	meta := metadataFile{
		GitHeadSHA:     e.GitHeadSHA,
		GitHeadMessage: e.GitHeadMessage,
		StartTime:      formatISO(e.StartTime),
		Description:    e.Description,
		Command:        e.Command,
		InvocationUID:  e.InvocationUID,
		ArgsChecksum:   e.ArgsChecksum,
	}
	if err := writeJSON(filepath.Join(e.CurExpDir, "metadata.json"), meta); err != nil {
		return err
	}
	return e.writeStatus(StatusRunning, "")
}

// resumeCheck implements spec.md §4.5's Resume Check: stored args and
// head SHA must match the current invocation bit-for-bit; description and
// start-time are loaded from the stored metadata and preserved, never
// overridden by this invocation's flags (SPEC_FULL.md §4.5).
func (e *Experiment) resumeCheck(hostArgs map[string]any, headSHA string) error {
	storedArgs, err := readArgs(e.CurExpDir, "args.json")
	if err != nil {
		return err
	}
	currentArgs, err := canonicalize(hostArgs)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(storedArgs, currentArgs) {
		return &MismatchedArgsError{Stored: storedArgs, Current: currentArgs}
	}

	meta, err := readMetadata(e.CurExpDir)
	if err != nil {
		return err
	}
	if meta.GitHeadSHA != headSHA {
		return &MismatchedCommitError{Stored: meta.GitHeadSHA, Current: headSHA}
	}

	e.Description = meta.Description
	startTime, err := parseISO(meta.StartTime)
	if err != nil {
		return err
	}
	e.StartTime = startTime
	return nil
}

func (e *Experiment) writeStatus(status Status, payload string) error {
	content := string(status) + "\n"
	if payload != "" {
		content += payload
		if !strings.HasSuffix(payload, "\n") {
			content += "\n"
		}
	}
	return os.WriteFile(filepath.Join(e.CurExpDir, "STATUS"), []byte(content), 0o644)
}

func (e *Experiment) rewriteMetadataEndTime() error {
	meta, err := readMetadata(e.CurExpDir)
	if err != nil {
		return err
	}
	meta.EndTime = formatISO(e.EndTime)
	return writeJSON(filepath.Join(e.CurExpDir, "metadata.json"), meta)
}

// Finish finalizes the experiment with SUCCESS. Idempotent: a second call
// (from any path — explicit, scoped, or process-exit) is a no-op.
func (e *Experiment) Finish() error {
	return e.finalize(StatusSuccess, "")
}

// FinishWithError finalizes the experiment with ERROR, recording err as a
// traceback whose first line is the contractually guaranteed
// "Traceback (most recent call last):" (SPEC_FULL.md §4.5).
func (e *Experiment) FinishWithError(err error) error {
	return e.finalize(StatusError, formatErrTraceback(err))
}

// finalize implements spec.md §4.5's finalization steps. It is idempotent;
// only the first call takes effect.
func (e *Experiment) finalize(status Status, payload string) error {
	e.mu.Lock()
	if e.finished {
		e.mu.Unlock()
		return nil
	}
	e.finished = true
	e.mu.Unlock()

	clock := e.clock
	if clock == nil {
		clock = time.Now
	}
	e.EndTime = clock()
	e.Status = status
	e.ErrorPayload = payload

	var warnings []error
	if err := e.rewriteMetadataEndTime(); err != nil {
		warnings = append(warnings, err)
	}
	if err := e.writeStatus(status, payload); err != nil {
		warnings = append(warnings, err)
	}
	if err := e.stdoutTee.Close(); err != nil {
		warnings = append(warnings, err)
	}
	if err := e.stderrTee.Close(); err != nil {
		warnings = append(warnings, err)
	}
	if e.handle != nil {
		e.handle.Deregister()
	}

	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "meticulous: finalization warning:", w)
	}
	return nil
}

// Scoped runs fn, guaranteeing finalization on every exit path out of it
// (spec.md §5's "scoped acquisition"): SUCCESS on a clean return, ERROR
// with a traceback if fn returns an error or panics. A recovered Exit
// sentinel finalizes as ERROR with no traceback body (the forced-exit
// row of spec.md §4.5's table) and is then re-panicked so it keeps
// propagating to a Run wrapper, if any. Any other recovered panic value
// is likewise re-panicked after finalization, mirroring a Python
// context manager that does not suppress the exception it observed.
func (e *Experiment) Scoped(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if sentinel, ok := r.(exitPanic); ok {
				e.finalize(StatusError, "")
				panic(sentinel)
			}
			e.finalize(StatusError, formatRecoverTraceback(r))
			panic(r)
		}
	}()

	if err = fn(); err != nil {
		e.finalize(StatusError, formatErrTraceback(err))
		return err
	}
	e.finalize(StatusSuccess, "")
	return nil
}

func formatErrTraceback(err error) string {
	var b strings.Builder
	b.WriteString("Traceback (most recent call last):\n")
	b.WriteString(err.Error())
	b.WriteString("\n")
	b.Write(debug.Stack())
	return b.String()
}

func formatRecoverTraceback(r any) string {
	var b strings.Builder
	b.WriteString("Traceback (most recent call last):\n")
	fmt.Fprintf(&b, "panic: %v\n", r)
	b.Write(debug.Stack())
	return b.String()
}

// flagPresent reports whether flag was passed explicitly on the command
// line, either as "--flag" or "--flag=value". It distinguishes "the host
// didn't ask for this" from "the host asked for the built-in default",
// which is what lets an ambient meticulous.yaml fill in a value without
// ever overriding something the invocation actually specified.
func flagPresent(argList []string, flag string) bool {
	for _, a := range argList {
		if a == flag || strings.HasPrefix(a, flag+"=") {
			return true
		}
	}
	return false
}
