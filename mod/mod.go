// Package mod resolves module paths against the file system.
package mod

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ToDirectory returns the directory form of a path: the cleaned path,
// or its parent directory if the path names an existing file.
func ToDirectory(path string) string {
	path = filepath.Clean(strings.TrimRight(path, "/"))
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}

// Join joins two path elements.
func Join(a, b string) string {
	return filepath.Join(a, b)
}

// Canonical returns the canonical absolute form of a path, with
// symlinks resolved, or "" if the path does not exist.
func Canonical(path string) string {
	p, err := filepath.EvalSymlinks(path)
	if err != nil {
		return ""
	}
	p, err = filepath.Abs(p)
	if err != nil {
		return ""
	}
	return p
}

// IsDirectory reports whether a path names a directory.
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Files returns the sorted names of the regular files in a directory.
// A missing or unreadable directory yields no files.
func Files(dir string) []string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, ent := range ents {
		if ent.IsDir() {
			continue
		}
		names = append(names, ent.Name())
	}
	sort.Strings(names)
	return names
}

// Extension returns a file name's extension without the dot.
func Extension(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}
