package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions ResolveSources selects. Language detection inside the
// parser accepts a few more header spellings; discovery sticks to
// files that can actually carry a module declaration.
var hdlExtensions = map[string]bool{
	".vhd":  true,
	".vhdl": true,
	".v":    true,
	".sv":   true,
}

// IsHDLSource reports whether the path carries a recognized HDL
// source extension.
func IsHDLSource(path string) bool {
	return hdlExtensions[strings.ToLower(filepath.Ext(path))]
}

// ResolveSources expands the configured include globs under root and
// returns the matching HDL source files, sorted, minus ignored ones.
func (c *Config) ResolveSources(root string) ([]string, error) {
	fileSet := make(map[string]bool)

	for _, pattern := range c.Scan.Include {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, pattern)
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			// Silently skip invalid patterns
			continue
		}

		for _, match := range matches {
			if !IsHDLSource(match) {
				continue
			}
			if c.ShouldIgnoreFile(match) {
				continue
			}
			fileSet[match] = true
		}
	}

	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

// expandGlob expands a glob pattern, handling ** for recursive matching
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return expandDoubleStarGlob(pattern)
	}
	return filepath.Glob(pattern)
}

// expandDoubleStarGlob handles ** patterns by walking the directory tree
func expandDoubleStarGlob(pattern string) ([]string, error) {
	var results []string

	parts := strings.SplitN(pattern, "**", 2)
	if len(parts) != 2 {
		return filepath.Glob(pattern)
	}

	baseDir := filepath.Clean(parts[0])
	if baseDir == "" {
		baseDir = "."
	}
	suffix := parts[1]
	if strings.HasPrefix(suffix, string(filepath.Separator)) {
		suffix = suffix[1:]
	}

	err := filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}

		if info.IsDir() {
			return nil
		}

		if suffix == "" {
			results = append(results, path)
			return nil
		}

		relPath, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}

		if matchSuffix(relPath, suffix) {
			results = append(results, path)
		}

		return nil
	})

	return results, err
}

// matchSuffix checks if a path matches a suffix pattern (after **)
func matchSuffix(path, pattern string) bool {
	pattern = strings.TrimPrefix(pattern, string(filepath.Separator))

	// A pattern without a directory component matches the filename
	if !strings.Contains(pattern, string(filepath.Separator)) {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}

	matched, _ := filepath.Match(pattern, path)
	if matched {
		return true
	}

	// Also try matching just the trailing path segments
	if len(path) > len(pattern) {
		suffix := path[len(path)-len(pattern):]
		matched, _ = filepath.Match(pattern, suffix)
		return matched
	}

	return false
}
