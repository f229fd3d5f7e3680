package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCaptureCopiesMatches(t *testing.T) {
	base := t.TempDir()
	dest := t.TempDir()

	mustWrite(t, filepath.Join(base, "configs", "a.yaml"), "a")
	mustWrite(t, filepath.Join(base, "configs", "nested", "b.yaml"), "b")
	mustWrite(t, filepath.Join(base, "README.md"), "readme")

	if err := Capture(base, []string{"configs/**/*.yaml"}, dest); err != nil {
		t.Fatal(err)
	}

	mustContain(t, filepath.Join(dest, "configs", "a.yaml"), "a")
	mustContain(t, filepath.Join(dest, "configs", "nested", "b.yaml"), "b")

	if _, err := os.Stat(filepath.Join(dest, "README.md")); !os.IsNotExist(err) {
		t.Fatalf("expected README.md not to be snapshotted, got err=%v", err)
	}
}

func TestCaptureNoPatternsIsNoop(t *testing.T) {
	base := t.TempDir()
	dest := t.TempDir()
	if err := Capture(base, nil, dest); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dest, got %v", entries)
	}
}

func TestCaptureNonMatchingPatternIsNotAnError(t *testing.T) {
	base := t.TempDir()
	dest := t.TempDir()
	if err := Capture(base, []string{"nothing/**/*.txt"}, dest); err != nil {
		t.Fatal(err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustContain(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(got) != want {
		t.Fatalf("%s: got %q want %q", path, got, want)
	}
}
