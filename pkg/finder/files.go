package finder

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PatchExt is the extension of Pure Data patch files
const PatchExt = ".pd"

// IsPatchFile reports whether path names a .pd file
func IsPatchFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), PatchExt)
}

// FindPatchFiles walks a directory and returns all .pd files in lexical
// order, skipping hidden directories such as .git.
func FindPatchFiles(root string) ([]string, error) {
	var patches []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if IsPatchFile(path) {
			patches = append(patches, path)
		}
		return nil
	})

	return patches, err
}

// ResolvePaths expands command line arguments into patch files. Directories
// are searched recursively, files are taken as given whatever their
// extension. Duplicates are dropped.
func ResolvePaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			result = append(result, clean)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			add(arg)
			continue
		}

		patches, err := FindPatchFiles(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", arg, err)
		}
		for _, p := range patches {
			add(p)
		}
	}

	sort.Strings(result)
	return result, nil
}
