package inputs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the image extensions accepted when none are configured.
var DefaultExtensions = []string{"jpg", "png", "bmp", "tif"}

// Options controls path resolution.
type Options struct {
	Extensions []string // without dot, case-insensitive
	Recursive  bool     // descend into subdirectories
}

// Skipped records an argument or directory entry that was not accepted.
type Skipped struct {
	Path   string
	Reason string
}

func (s Skipped) String() string {
	return fmt.Sprintf("Ignoring %q: %s", s.Path, s.Reason)
}

// Resolve expands args into the list of image files to process.
// Files are taken as given; directories contribute their regular files
// (the whole tree when opts.Recursive). Each path appears once, in the
// order it was first found.
func Resolve(args []string, opts Options) ([]string, []Skipped) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	accept := make(map[string]bool, len(exts))
	for _, e := range exts {
		accept[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}
	rejectMsg := fmt.Sprintf("only %s are accepted", strings.Join(exts, "|"))

	var files []string
	var skipped []Skipped
	seen := make(map[string]bool)

	add := func(path string) {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if !accept[ext] {
			skipped = append(skipped, Skipped{Path: path, Reason: rejectMsg})
			return
		}
		key := filepath.Clean(path)
		if seen[key] {
			return
		}
		seen[key] = true
		files = append(files, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			skipped = append(skipped, Skipped{Path: arg, Reason: "it does not exist"})
			continue
		}

		if info.Mode().IsRegular() {
			add(arg)
			continue
		}
		if !info.IsDir() {
			skipped = append(skipped, Skipped{Path: arg, Reason: "not a regular file or directory"})
			continue
		}

		if !opts.Recursive {
			entries, err := os.ReadDir(arg)
			if err != nil {
				skipped = append(skipped, Skipped{Path: arg, Reason: "an error occurred reading the directory"})
				continue
			}
			for _, e := range entries {
				path := filepath.Join(arg, e.Name())
				if regularFile(path, e) {
					add(path)
				}
			}
			continue
		}

		filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				skipped = append(skipped, Skipped{Path: path, Reason: "an error occurred reading the directory"})
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.IsDir() && regularFile(path, d) {
				add(path)
			}
			return nil
		})
	}

	return files, skipped
}

// regularFile follows symlinks so linked images are picked up too.
func regularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
