// Package demoargs builds the host argument surfaces used by the
// meticulous-demo binary and by the root package's end-to-end tests,
// mirroring the MNIST-style training script parser that meticulous's
// Python counterpart ships as a worked example.
package demoargs

import "github.com/AshwinParanjape/meticulous/internal/argsurface"

// Training returns a parser for a typical training-script invocation: a
// batch of optional hyperparameters, none of them required.
func Training() *argsurface.Parser {
	p := argsurface.NewParser("meticulous-demo training example")
	p.Add(argsurface.Option{Name: "--batch-size", Kind: argsurface.KindInt, Default: 64, Usage: "input batch size for training"})
	p.Add(argsurface.Option{Name: "--test-batch-size", Kind: argsurface.KindInt, Default: 1000, Usage: "input batch size for testing"})
	p.Add(argsurface.Option{Name: "--epochs", Kind: argsurface.KindInt, Default: 14, Usage: "number of epochs to train"})
	p.Add(argsurface.Option{Name: "--lr", Kind: argsurface.KindFloat64, Default: 1.0, Usage: "learning rate"})
	p.Add(argsurface.Option{Name: "--gamma", Kind: argsurface.KindFloat64, Default: 0.7, Usage: "learning rate step gamma"})
	p.Add(argsurface.Option{Name: "--no-cuda", Kind: argsurface.KindBool, Default: false, Usage: "disables CUDA training"})
	p.Add(argsurface.Option{Name: "--dry-run", Kind: argsurface.KindBool, Default: false, Usage: "quickly check a single pass"})
	p.Add(argsurface.Option{Name: "--seed", Kind: argsurface.KindInt, Default: 1, Usage: "random seed"})
	p.Add(argsurface.Option{Name: "--log-interval", Kind: argsurface.KindInt, Default: 10, Usage: "batches to wait before logging training status"})
	p.Add(argsurface.Option{Name: "--save-model", Kind: argsurface.KindBool, Default: false, Usage: "save the trained model"})
	return p
}

// TrainingWithRequiredArgs returns a parser with a required positional
// argument and no default for it, exercising the default-args round-trip
// edge case where a required value is absent from default_args.json.
func TrainingWithRequiredArgs() *argsurface.Parser {
	p := argsurface.NewParser("meticulous-demo training example with a required positional")
	p.Add(argsurface.Option{Name: "batchsize", Kind: argsurface.KindInt, Positional: true, Usage: "input batch size for training"})
	p.Add(argsurface.Option{Name: "--test-batch-size", Kind: argsurface.KindInt, Default: 1000, Usage: "input batch size for testing"})
	return p
}
