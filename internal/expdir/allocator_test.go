package expdir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAllocateAutoIncrement(t *testing.T) {
	root := t.TempDir()

	r1, err := Allocate(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if r1.ID != "1" || !r1.Created {
		t.Fatalf("unexpected first allocation: %+v", r1)
	}

	r2, err := Allocate(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if r2.ID != "2" || !r2.Created {
		t.Fatalf("unexpected second allocation: %+v", r2)
	}
}

func TestAllocateExplicitIDCoexistsWithAuto(t *testing.T) {
	root := t.TempDir()

	r1, err := Allocate(root, "a")
	if err != nil {
		t.Fatal(err)
	}
	if r1.ID != "a" || !r1.Created {
		t.Fatalf("unexpected explicit allocation: %+v", r1)
	}

	r2, err := Allocate(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if r2.ID != "1" || !r2.Created {
		t.Fatalf("expected auto-id to ignore non-integer sibling, got %+v", r2)
	}

	if _, err := os.Stat(filepath.Join(root, "a")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "1")); err != nil {
		t.Fatal(err)
	}
}

func TestAllocateExplicitIDResumesEmptyDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "2"), 0o755); err != nil {
		t.Fatal(err)
	}

	r, err := Allocate(root, "2")
	if err != nil {
		t.Fatal(err)
	}
	if r.Created {
		t.Fatal("expected pre-existing directory to be reported as not created (resume)")
	}
	if r.ID != "2" {
		t.Fatalf("unexpected id: %q", r.ID)
	}
}

func TestAllocateExplicitIDResumesNonEmptyDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "2")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "args.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Allocate(root, "2")
	if err != nil {
		t.Fatal(err)
	}
	if r.Created {
		t.Fatal("expected pre-existing non-empty directory to be reported as a resume")
	}
}

func TestAllocateAutoSkipsRaceCollision(t *testing.T) {
	root := t.TempDir()
	// Simulate a sibling invocation that already claimed "1" with content.
	dir := filepath.Join(root, "1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "STATUS"), []byte("RUNNING\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Allocate(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if r.ID != "2" || !r.Created {
		t.Fatalf("expected allocator to skip the non-empty sibling, got %+v", r)
	}
}

func TestAllocateCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "experiments")
	r, err := Allocate(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if r.ID != "1" {
		t.Fatalf("unexpected id: %q", r.ID)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatal(err)
	}
}
