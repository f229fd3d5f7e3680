// Command meticulous-demo is a worked example of the Lifecycle Controller,
// standing in for the training-script fixtures (exit_testing_*.py /
// exit_testing_cm_*.py) that exercise every termination path: a clean
// return, a forced process exit, and an unhandled panic, each with and
// without the scoped-lifetime helper.
package main

import (
	"fmt"
	"os"

	"github.com/AshwinParanjape/meticulous"
	"github.com/AshwinParanjape/meticulous/internal/demoargs"
)

func main() {
	meticulous.Run(run)
}

func run() int {
	if len(os.Args) < 2 {
		usage()
		return 1
	}
	switch os.Args[1] {
	case "success":
		return success(os.Args[2:])
	case "exit":
		return forcedExit(os.Args[2:])
	case "exception":
		return raiseException(os.Args[2:])
	case "cm-success":
		return scopedSuccess(os.Args[2:])
	case "cm-exit":
		return scopedExit(os.Args[2:])
	case "cm-exception":
		return scopedException(os.Args[2:])
	default:
		usage()
		return 1
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  meticulous-demo success [args...]")
	fmt.Fprintln(os.Stderr, "  meticulous-demo exit [args...]")
	fmt.Fprintln(os.Stderr, "  meticulous-demo exception [args...]")
	fmt.Fprintln(os.Stderr, "  meticulous-demo cm-success [args...]")
	fmt.Fprintln(os.Stderr, "  meticulous-demo cm-exit [args...]")
	fmt.Fprintln(os.Stderr, "  meticulous-demo cm-exception [args...]")
}

func newExperiment(args []string) (*meticulous.Experiment, int) {
	p := demoargs.Training()
	meticulous.AddArgumentGroup(p)
	exp, err := meticulous.FromParser(p, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, 1
	}
	return exp, 0
}

func success(args []string) int {
	exp, code := newExperiment(args)
	if exp == nil {
		return code
	}
	if err := exp.Finish(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func forcedExit(args []string) int {
	exp, code := newExperiment(args)
	if exp == nil {
		return code
	}
	meticulous.Exit(0)
	return 0 // unreachable: Exit panics
}

func raiseException(args []string) int {
	exp, code := newExperiment(args)
	if exp == nil {
		return code
	}
	_ = exp
	panic("meticulous-demo: exception subcommand")
}

func scopedSuccess(args []string) int {
	exp, code := newExperiment(args)
	if exp == nil {
		return code
	}
	if err := exp.Scoped(func() error { return nil }); err != nil {
		return 1
	}
	return 0
}

func scopedExit(args []string) int {
	exp, code := newExperiment(args)
	if exp == nil {
		return code
	}
	_ = exp.Scoped(func() error {
		meticulous.Exit(0)
		return nil
	})
	return 0 // unreachable: Scoped re-panics the Exit sentinel
}

func scopedException(args []string) int {
	exp, code := newExperiment(args)
	if exp == nil {
		return code
	}
	_ = exp.Scoped(func() error {
		panic("meticulous-demo: cm-exception subcommand")
	})
	return 0 // unreachable: Scoped re-panics
}
