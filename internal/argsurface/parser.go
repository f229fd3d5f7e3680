// Package argsurface implements the Argument Surface: a small declarative
// option registry that the Lifecycle Controller layers its own fixed
// options on top of (spec.md §4.1), and that can be parsed twice — once
// against the real argument vector, once against an empty one — to recover
// both the live values and the parser's defaults.
//
// It is deliberately not built on the standard library's flag package:
// flag.FlagSet has no notion of a required positional argument with no
// default, and spec.md's default-args round-trip property depends on being
// able to tell "has a default" apart from "required, no default" for
// exactly that reason. The parsing loop itself follows the same
// lookahead-and-consume idiom used by hand-rolled CLI arg loops (match a
// token against a registered flag name, consume the following token(s) as
// its value) rather than anything more clever.
package argsurface

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Kind is the value type of a registered Option.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat64
	KindBool
	KindStringSlice // repeatable flag, e.g. --snapshot-glob a --snapshot-glob b
)

// Option describes one argument the host (or the engine) wants to accept.
//
// Name is the flag spelling ("--epochs") for a flag, or the bare name
// ("batchsize") for a positional. Default is the value used when the flag
// is absent; for a required positional, leave Default nil — Parse will
// fail if it isn't supplied, and it is omitted from the default-args
// snapshot (spec.md §4.1's "required positional set").
type Option struct {
	Name       string
	Kind       Kind
	Default    any
	Positional bool
	Usage      string

	engineOwned bool
}

// Parser is a mutable registry of Options, in registration order.
type Parser struct {
	description string
	options     []*Option
	byName      map[string]*Option
	groupAdded  bool
}

// NewParser returns an empty parser with the given description (carried
// through only for documentation/usage purposes; it plays no role in
// parsing).
func NewParser(description string) *Parser {
	return &Parser{description: description, byName: map[string]*Option{}}
}

// Description returns the parser's description.
func (p *Parser) Description() string { return p.description }

// Add registers a host-owned option and returns p for chaining.
func (p *Parser) Add(opt Option) *Parser {
	return p.add(opt)
}

func (p *Parser) add(opt Option) *Parser {
	o := opt
	p.options = append(p.options, &o)
	p.byName[o.Name] = &o
	return p
}

// Options returns the registered options in registration order.
func (p *Parser) Options() []*Option {
	out := make([]*Option, len(p.options))
	copy(out, p.options)
	return out
}

// HasEngineGroup reports whether AddArgumentGroup has already run on p.
// Calling AddArgumentGroup a second time is undefined per spec.md §4.1;
// this flag exists so that misuse is at least observable to callers that
// check it, not so Parse enforces it.
func (p *Parser) HasEngineGroup() bool { return p.groupAdded }

func (p *Parser) markEngineGroupAdded() { p.groupAdded = true }

// addEngine registers an engine-owned option; its value is reported in the
// engineArgs map returned by Parse rather than hostArgs.
func (p *Parser) addEngine(opt Option) *Parser {
	opt.engineOwned = true
	return p.add(opt)
}

// AddEngineOption is the low-level hook the root package's
// AddArgumentGroup uses to attach engine-owned options. It is exported so
// other packages in this module (argschema, snapshot) can register their
// own optional engine flags without argsurface needing to know about them.
func AddEngineOption(p *Parser, opt Option) {
	p.addEngine(opt)
	p.markEngineGroupAdded()
}

func destName(flagOrPositional string) string {
	name := strings.TrimLeft(flagOrPositional, "-")
	return strings.ReplaceAll(name, "-", "_")
}

// parseResult holds raw values keyed by Option.Name (not dest name).
type parseResult map[string]any

// Parse runs argList through p twice — once for real, once against an
// empty vector — and returns host args, engine args, and default args,
// each keyed by dest name (dashes replaced with underscores, leading
// dashes stripped), plus the reconstructed command line.
func Parse(p *Parser, argList []string) (hostArgs, engineArgs, defaultArgs map[string]any, command string, err error) {
	live, err := parseInto(p, argList, false)
	if err != nil {
		return nil, nil, nil, "", err
	}
	defaults, err := parseInto(p, nil, true)
	if err != nil {
		return nil, nil, nil, "", err
	}

	hostArgs = map[string]any{}
	engineArgs = map[string]any{}
	defaultArgs = map[string]any{}
	for _, o := range p.options {
		dest := destName(o.Name)
		v, ok := live[o.Name]
		if !ok {
			v = o.Default
		}
		if o.engineOwned {
			engineArgs[dest] = v
		} else {
			hostArgs[dest] = v
		}
		if o.Positional || o.engineOwned {
			continue
		}
		if dv, ok := defaults[o.Name]; ok {
			defaultArgs[dest] = dv
		} else {
			defaultArgs[dest] = o.Default
		}
	}
	return hostArgs, engineArgs, defaultArgs, CommandLine(argList), nil
}

// CommandLine reconstructs the verbatim invocation string: the running
// binary's base name followed by argList, space-joined.
func CommandLine(argList []string) string {
	prog := "program"
	if len(os.Args) > 0 {
		prog = filepath.Base(os.Args[0])
	}
	parts := append([]string{prog}, argList...)
	return strings.Join(parts, " ")
}

func parseInto(p *Parser, argList []string, forDefaults bool) (parseResult, error) {
	result := parseResult{}
	var positionals []*Option
	for _, o := range p.options {
		if o.Positional {
			positionals = append(positionals, o)
		}
	}
	posIdx := 0

	i := 0
	for i < len(argList) {
		tok := argList[i]
		o, isFlag := p.byName[tok]
		if !isFlag && strings.HasPrefix(tok, "--") {
			return nil, fmt.Errorf("argsurface: unrecognized flag %q", tok)
		}
		if isFlag {
			switch o.Kind {
			case KindBool:
				result[o.Name] = true
				i++
			case KindStringSlice:
				if i+1 >= len(argList) {
					return nil, fmt.Errorf("argsurface: flag %q requires a value", tok)
				}
				existing, _ := result[o.Name].([]string)
				result[o.Name] = append(existing, argList[i+1])
				i += 2
			default:
				if i+1 >= len(argList) {
					return nil, fmt.Errorf("argsurface: flag %q requires a value", tok)
				}
				v, err := convert(o.Kind, argList[i+1])
				if err != nil {
					return nil, fmt.Errorf("argsurface: flag %q: %w", tok, err)
				}
				result[o.Name] = v
				i++
				i++
			}
			continue
		}
		// Positional token.
		if posIdx >= len(positionals) {
			return nil, fmt.Errorf("argsurface: unexpected positional argument %q", tok)
		}
		o = positionals[posIdx]
		v, err := convert(o.Kind, tok)
		if err != nil {
			return nil, fmt.Errorf("argsurface: positional %q: %w", o.Name, err)
		}
		result[o.Name] = v
		posIdx++
		i++
	}

	if !forDefaults {
		for ; posIdx < len(positionals); posIdx++ {
			if positionals[posIdx].Default == nil {
				return nil, fmt.Errorf("argsurface: missing required positional argument %q", positionals[posIdx].Name)
			}
		}
	}
	return result, nil
}

func convert(k Kind, raw string) (any, error) {
	switch k {
	case KindString:
		return raw, nil
	case KindInt:
		return strconv.Atoi(raw)
	case KindFloat64:
		return strconv.ParseFloat(raw, 64)
	case KindBool:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}
