package argschema

import (
	"os"
	"path/filepath"
	"testing"
)

const testSchema = `{
  "type": "object",
  "properties": {
    "epochs": {"type": "integer", "minimum": 1}
  },
  "required": ["epochs"]
}`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	if err := os.WriteFile(path, []byte(testSchema), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateAccepts(t *testing.T) {
	path := writeSchema(t)
	if err := Validate(path, map[string]any{"epochs": 5}); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRejectsMissingRequired(t *testing.T) {
	path := writeSchema(t)
	err := Validate(path, map[string]any{})
	if err == nil {
		t.Fatal("expected validation error for missing required field")
	}
	var ve *ValidationError
	if !asValidationError(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
}

func TestValidateRejectsBelowMinimum(t *testing.T) {
	path := writeSchema(t)
	err := Validate(path, map[string]any{"epochs": 0})
	if err == nil {
		t.Fatal("expected validation error for epochs below minimum")
	}
}

func asValidationError(err error, target **ValidationError) bool {
	if ve, ok := err.(*ValidationError); ok {
		*target = ve
		return true
	}
	return false
}
