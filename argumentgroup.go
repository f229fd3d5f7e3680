package meticulous

import "github.com/AshwinParanjape/meticulous/internal/argsurface"

const defaultDescription = "produced by a run of this program"

// AddArgumentGroup attaches the engine-owned options to parser (spec.md
// §6): --experiments-directory, --experiment-id, --description, plus the
// additive --args-schema and --snapshot-glob (SPEC_FULL.md §6.b). Calling
// it twice on the same parser is undefined; callers must not.
func AddArgumentGroup(parser *argsurface.Parser, description ...string) {
	desc := defaultDescription
	if len(description) > 0 && description[0] != "" {
		desc = description[0]
	}

	argsurface.AddEngineOption(parser, argsurface.Option{
		Name:    "--experiments-directory",
		Kind:    argsurface.KindString,
		Default: DefaultExperimentsDirectory,
		Usage:   "root directory for experiments",
	})
	argsurface.AddEngineOption(parser, argsurface.Option{
		Name:    "--experiment-id",
		Kind:    argsurface.KindString,
		Default: "",
		Usage:   "skip auto-allocation and resume/create this id verbatim",
	})
	argsurface.AddEngineOption(parser, argsurface.Option{
		Name:    "--description",
		Kind:    argsurface.KindString,
		Default: desc,
		Usage:   "short free-form description stored in metadata.json",
	})
	argsurface.AddEngineOption(parser, argsurface.Option{
		Name:    "--args-schema",
		Kind:    argsurface.KindString,
		Default: "",
		Usage:   "optional JSON Schema file to validate host args against before allocation",
	})
	argsurface.AddEngineOption(parser, argsurface.Option{
		Name:    "--snapshot-glob",
		Kind:    argsurface.KindStringSlice,
		Default: nil,
		Usage:   "optional, repeatable: copy files matching this glob into curexpdir/snapshot at creation time",
	})
}
