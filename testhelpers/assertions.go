// Package testhelpers provides testing utilities for the forksync CLI,
// including a scene system, Git repository helpers, and custom assertions.
package testhelpers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectTags asserts that the repository has exactly the expected tags
// matching the given pattern, ignoring order.
func ExpectTags(t *testing.T, repo *GitRepo, pattern string, expected []string) {
	t.Helper()

	tags, err := repo.ListTags(pattern)
	require.NoError(t, err, "Failed to list tags")

	sort.Strings(tags)
	sorted := append([]string(nil), expected...)
	sort.Strings(sorted)

	require.Equal(t, sorted, tags, "Tags do not match")
}

// ExpectTagCount asserts the number of tags matching a pattern.
func ExpectTagCount(t *testing.T, repo *GitRepo, pattern string, expected int) {
	t.Helper()

	tags, err := repo.ListTags(pattern)
	require.NoError(t, err, "Failed to list tags")
	require.Len(t, tags, expected, "Unexpected number of tags matching %s", pattern)
}

// ExpectSameRevision asserts that two revisions resolve to the same commit.
func ExpectSameRevision(t *testing.T, repo *GitRepo, a, b string) {
	t.Helper()

	shaA, err := repo.GetRevision(a)
	require.NoError(t, err, "Failed to resolve %s", a)
	shaB, err := repo.GetRevision(b)
	require.NoError(t, err, "Failed to resolve %s", b)
	require.Equal(t, shaA, shaB, "%s and %s point at different commits", a, b)
}

// ExpectFileContent asserts the contents of a file in the repository.
func ExpectFileContent(t *testing.T, repo *GitRepo, name, expected string) {
	t.Helper()

	actual, err := repo.ReadFile(name)
	require.NoError(t, err, "Failed to read %s", name)
	require.Equal(t, expected, actual, "Contents of %s do not match", name)
}
