package finder

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("#N canvas 0 0 450 300 12;\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFindPatchFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"main.pd",
		"lib/osc.pd",
		"lib/README.md",
		"lib/deep/FILTER.PD",
		".git/hooks/stale.pd",
	)

	files, err := FindPatchFiles(root)
	if err != nil {
		t.Fatalf("FindPatchFiles() error = %v", err)
	}

	want := []string{
		filepath.Join(root, "lib", "deep", "FILTER.PD"),
		filepath.Join(root, "lib", "osc.pd"),
		filepath.Join(root, "main.pd"),
	}
	if len(files) != len(want) {
		t.Fatalf("FindPatchFiles() found %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestFindPatchFiles_MissingRoot(t *testing.T) {
	if _, err := FindPatchFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("FindPatchFiles() should fail for a missing directory")
	}
}

func TestResolvePaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.pd", "sub/b.pd", "notes.txt")

	files, err := ResolvePaths([]string{
		filepath.Join(root, "sub"),
		filepath.Join(root, "a.pd"),
		filepath.Join(root, "notes.txt"),
		root,
	})
	if err != nil {
		t.Fatalf("ResolvePaths() error = %v", err)
	}

	want := []string{
		filepath.Join(root, "a.pd"),
		filepath.Join(root, "notes.txt"),
		filepath.Join(root, "sub", "b.pd"),
	}
	if len(files) != len(want) {
		t.Fatalf("ResolvePaths() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestResolvePaths_Missing(t *testing.T) {
	if _, err := ResolvePaths([]string{filepath.Join(t.TempDir(), "missing.pd")}); err == nil {
		t.Error("ResolvePaths() should fail for a missing file")
	}
}
