package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRootPyproject(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "pyproject.toml"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	nested := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	if got != root {
		t.Errorf("FindRoot = %q, want %q", got, root)
	}
}

func TestFindRootGitDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	nested := filepath.Join(root, "pkg")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	if got != root {
		t.Errorf("FindRoot = %q, want %q", got, root)
	}
}

func TestFindRootNearestMarkerWins(t *testing.T) {
	outer := t.TempDir()
	if err := os.MkdirAll(filepath.Join(outer, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	inner := filepath.Join(outer, "vendored")
	if err := os.MkdirAll(inner, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(inner, "pyproject.toml"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := FindRoot(filepath.Join(inner, "sub", "deeper"))
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	// sub/deeper does not exist on disk; the walk still starts there.
	if got != inner {
		t.Errorf("FindRoot = %q, want %q", got, inner)
	}
}

func TestFindRootFromFilePath(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "pyproject.toml"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	file := filepath.Join(root, "mod.py")
	if err := os.WriteFile(file, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := FindRoot(file)
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	if got != root {
		t.Errorf("FindRoot = %q, want %q", got, root)
	}
}

func TestFindRootFallsBackToFilesystemRoot(t *testing.T) {
	dir := t.TempDir()

	got, err := FindRoot(dir)
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	// Temp dirs have no markers; expect an ancestor of dir.
	rel, relErr := filepath.Rel(got, dir)
	if relErr != nil || rel == "" || filepath.IsAbs(rel) {
		t.Errorf("FindRoot = %q, want an ancestor of %q", got, dir)
	}
}
