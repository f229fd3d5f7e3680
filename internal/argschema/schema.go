// Package argschema optionally validates a parsed host-args map against a
// user-supplied JSON Schema file before the Lifecycle Controller allocates
// an experiment directory (SPEC_FULL.md §6.b's --args-schema option).
package argschema

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError reports that args failed schema validation.
type ValidationError struct {
	SchemaPath string
	Err        error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("argschema: %s: %v", e.SchemaPath, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate compiles the schema at path and validates args against it. args
// is round-tripped through JSON first so Go types (time.Time, typed
// structs, etc.) are checked the same way a JSON document would be.
func Validate(path string, args map[string]any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(path, strings.NewReader(string(b))); err != nil {
		return err
	}
	schema, err := c.Compile(path)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}

	if err := schema.Validate(v); err != nil {
		return &ValidationError{SchemaPath: path, Err: err}
	}
	return nil
}
