package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProtectedPathsFileName is the plain-text protected paths list at the
// repository root. One pattern per line, '#' comments, trailing '/' marks
// a directory pattern.
const ProtectedPathsFileName = ".forksync-protected"

// ProtectedPathEntry is one advisory protected-path pattern. Consulted by
// health checks and surfaced as warnings during conflict resolution; never
// enforced automatically during merges.
type ProtectedPathEntry struct {
	Pattern string
	Dir     bool
}

// LoadProtectedPaths reads the protected paths list from the repository root.
// A missing file yields an empty list.
func LoadProtectedPaths(repoRoot string) ([]ProtectedPathEntry, error) {
	data, err := os.ReadFile(filepath.Join(repoRoot, ProtectedPathsFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read protected paths: %w", err)
	}
	return ParseProtectedPaths(string(data)), nil
}

// ParseProtectedPaths parses the protected paths list format.
func ParseProtectedPaths(content string) []ProtectedPathEntry {
	var entries []ProtectedPathEntry
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, "/") {
			entries = append(entries, ProtectedPathEntry{
				Pattern: strings.TrimSuffix(line, "/"),
				Dir:     true,
			})
			continue
		}
		entries = append(entries, ProtectedPathEntry{Pattern: line})
	}
	return entries
}

// Matches reports whether a repository-relative path falls under this entry.
func (e ProtectedPathEntry) Matches(path string) bool {
	path = filepath.ToSlash(path)
	if e.Dir {
		return path == e.Pattern || strings.HasPrefix(path, e.Pattern+"/")
	}
	if ok, err := filepath.Match(e.Pattern, path); err == nil && ok {
		return true
	}
	return path == e.Pattern
}

// IsProtected reports whether any entry matches the given path.
func IsProtected(entries []ProtectedPathEntry, path string) bool {
	for _, e := range entries {
		if e.Matches(path) {
			return true
		}
	}
	return false
}
