package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames_BuildAndSearch(t *testing.T) {
	isolateEnv(t)
	_, names := writeDumps(t)
	indexDir := filepath.Join(t.TempDir(), "names.bleve")

	out, err := execute(t, "names",
		"--offline-names", names,
		"--index-dir", indexDir,
		"fibonacci")
	require.NoError(t, err)
	assert.Contains(t, out, "A000045")

	// Second run reuses the index without the dump flag.
	out, err = execute(t, "names", "--index-dir", indexDir, "positive")
	require.NoError(t, err)
	assert.Contains(t, out, "A000027")
}

func TestNames_NoMatches(t *testing.T) {
	isolateEnv(t)
	_, names := writeDumps(t)
	indexDir := filepath.Join(t.TempDir(), "names.bleve")

	out, err := execute(t, "names",
		"--offline-names", names,
		"--index-dir", indexDir,
		"--rebuild",
		"xylophone")
	require.NoError(t, err)
	assert.Contains(t, out, "no matches")
}

func TestNames_EmptyIndexWithoutDump(t *testing.T) {
	isolateEnv(t)
	indexDir := filepath.Join(t.TempDir(), "names.bleve")

	_, err := execute(t, "names", "--index-dir", indexDir, "fibonacci")
	assert.Error(t, err)
}

func TestNames_Limit(t *testing.T) {
	isolateEnv(t)
	_, names := writeDumps(t)
	indexDir := filepath.Join(t.TempDir(), "names.bleve")

	out, err := execute(t, "names",
		"--offline-names", names,
		"--index-dir", indexDir,
		"--limit", "1",
		"numbers")
	require.NoError(t, err)
	assert.Contains(t, out, " 1. ")
	assert.NotContains(t, out, " 2. ")
}
