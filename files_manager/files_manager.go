// Package files_manager discovers convertible image files on disk.
package files_manager

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pic2any/formats"
)

// GetImagePaths returns the convertible files directly inside dir, with
// their combined size in bytes. AppleDouble sidecars ("._" prefix) and
// subdirectories are skipped.
func GetImagePaths(dir string) ([]string, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}
	paths := make([]string, 0, len(entries))
	var size int64 = 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "._") {
			continue
		}
		if !formats.InputAllowed(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
		info, err := entry.Info()
		if err == nil {
			size += info.Size()
		}
	}
	sort.Strings(paths)
	return paths, size, nil
}

// ExpandInputs flattens a mixed list of files and directories into a
// list of convertible files. Directories are scanned one level deep;
// explicitly named files must exist and carry a recognized extension.
func ExpandInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read input %q: %w", arg, err)
		}
		if info.IsDir() {
			found, _, err := GetImagePaths(arg)
			if err != nil {
				return nil, fmt.Errorf("cannot scan directory %q: %w", arg, err)
			}
			files = append(files, found...)
			continue
		}
		if !formats.InputAllowed(arg) {
			return nil, fmt.Errorf("unsupported input file %q", arg)
		}
		files = append(files, arg)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no convertible image files among inputs")
	}
	return files, nil
}
