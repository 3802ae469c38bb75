package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// hdlExtensions are the files the black-box search considers
var hdlExtensions = map[string]bool{".vhd": true, ".vhdl": true, ".v": true, ".sv": true}

// SourceFiles expands the black-box search paths below rootPath and
// returns every HDL file found, sorted
func (c *Config) SourceFiles(rootPath string) ([]string, error) {
	fileSet := make(map[string]bool)
	for _, pattern := range c.BlackBox.SearchPaths {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(rootPath, pattern)
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("search path %s: %w", pattern, err)
		}

		for _, match := range matches {
			if hdlExtensions[strings.ToLower(filepath.Ext(match))] {
				fileSet[filepath.Clean(match)] = true
			}
		}
	}

	for _, pattern := range c.BlackBox.Exclude {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(rootPath, pattern)
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			continue
		}

		for _, match := range matches {
			delete(fileSet, filepath.Clean(match))
		}
	}

	result := make([]string, 0, len(fileSet))
	for f := range fileSet {
		result = append(result, f)
	}
	sort.Strings(result)
	return result, nil
}

// ResolveSource locates the external source named by a design. A path
// that exists as given, or relative to rootPath, wins; otherwise the
// search paths are scanned for a file with the same base name.
func (c *Config) ResolveSource(rootPath, name string) (string, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = append(candidates, filepath.Join(rootPath, name))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}

	files, err := c.SourceFiles(rootPath)
	if err != nil {
		return "", err
	}
	var found []string
	for _, f := range files {
		if filepath.Base(f) == filepath.Base(name) {
			found = append(found, f)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("external source %s not found in %v", name, c.BlackBox.SearchPaths)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("external source %s is ambiguous: %s", name, strings.Join(found, ", "))
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
	baseDir := filepath.Clean(parts[0])
	if baseDir == "" {
		baseDir = "."
	}
	suffix := strings.TrimPrefix(parts[1], string(filepath.Separator))

	err := filepath.WalkDir(baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries, continue walking
		}
		if d.IsDir() {
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
	// A pattern without a directory component matches the file name
	if !strings.Contains(pattern, string(filepath.Separator)) {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}

	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}

	// Match the trailing components of path
	parts := strings.Split(path, string(filepath.Separator))
	depth := len(strings.Split(pattern, string(filepath.Separator)))
	if len(parts) > depth {
		tail := filepath.Join(parts[len(parts)-depth:]...)
		matched, _ := filepath.Match(pattern, tail)
		return matched
	}
	return false
}
