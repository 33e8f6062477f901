package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv keeps tests away from the real home directory and user
// config, and gives each test a private HOME for logs and caches.
func isolateEnv(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
}

// execute runs the CLI with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// writeDumps writes small stripped and names fixtures and returns their
// paths.
func writeDumps(t *testing.T) (stripped, names string) {
	t.Helper()
	dir := t.TempDir()

	stripped = filepath.Join(dir, "stripped")
	require.NoError(t, os.WriteFile(stripped, []byte(
		"# header\n"+
			"A000027 ,1,2,3,4,5,6,7,8,\n"+
			"A000045 ,0,1,1,2,3,5,8,13,21,34,\n"+
			"A000079 ,1,2,4,8,16,32,\n"), 0644))

	names = filepath.Join(dir, "names")
	require.NoError(t, os.WriteFile(names, []byte(
		"A000027 The positive integers.\n"+
			"A000045 Fibonacci numbers.\n"+
			"A000079 Powers of 2.\n"), 0644))
	return stripped, names
}

func TestRootCmd_Help(t *testing.T) {
	isolateEnv(t)

	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "probe")
	assert.Contains(t, out, "fetch")
	assert.Contains(t, out, "names")
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "cache")
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "frobnicate")
	assert.Error(t, err)
}
