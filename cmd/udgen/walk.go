package main

import (
	"os"
	"path/filepath"
	"strings"
)

// findFiles returns every path under roots matching ext. Directories are
// expanded: non-recursive mode lists only their direct children, recursive
// mode walks the whole subtree. A root that is itself a regular file is
// returned as-is regardless of extension.
func findFiles(roots []string, ext string, recursive bool) ([]string, error) {
	var out []string
	for _, root := range roots {
		fi, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			out = append(out, root)
			continue
		}

		if recursive {
			err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && strings.HasSuffix(path, "."+ext) {
					out = append(out, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), "."+ext) {
				out = append(out, filepath.Join(root, e.Name()))
			}
		}
	}
	return out, nil
}
