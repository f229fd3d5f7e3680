package meticulous

import "os"

// exitPanic is the sentinel Exit panics with. It is recovered only by
// Run's top-level recover and by Scoped, which re-panics it after
// finalizing the scope's experiment so it keeps propagating.
type exitPanic struct{ code int }

// Exit requests process termination with the given code while still
// letting any live experiment finalize. Host code running under a live
// experiment MUST call Exit instead of os.Exit: os.Exit skips every
// deferred function process-wide, which would leave Run's finalization
// defer unreached (SPEC_FULL.md §5). Exit never returns.
func Exit(code int) {
	panic(exitPanic{code: code})
}

// Run is the main-wrapper spec.md §9's design notes anticipate for a
// language without a built-in at-exit facility: it calls fn, drains any
// experiments still live in internal/registry's LIFO order with a status
// inferred from how fn terminated, and only then calls the real os.Exit.
//
//   - fn panics with the Exit sentinel: drains with ERROR, no traceback
//     (the "Forced process exit" row of spec.md §4.5's table).
//   - fn panics with anything else: drains with ERROR and a
//     runtime/debug.Stack() traceback (the "Unhandled exception" row).
//   - fn returns nonzero: drains with ERROR, no traceback (same row as a
//     sentinel Exit — a nonzero return is still a forced exit).
//   - fn returns zero: drains with SUCCESS (the "normal process
//     termination with live experiment" row).
func Run(fn func() int) {
	code := 0
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if sentinel, ok := r.(exitPanic); ok {
				code = sentinel.code
				pendingTraceback = ""
				liveRegistry.DrainLIFO(true)
				return
			}
			code = 1
			pendingTraceback = formatRecoverTraceback(r)
			liveRegistry.DrainLIFO(true)
			pendingTraceback = ""
		}()
		code = fn()
		if code == 0 {
			liveRegistry.DrainLIFO(false)
		} else {
			pendingTraceback = ""
			liveRegistry.DrainLIFO(true)
		}
	}()
	os.Exit(code)
}
