package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// catalogCUE is a CUE package with one enumeration of each shape the
// commands care about.
const catalogCUE = `package defs

enum: Perm: {
	kind: "flag"
	members: {
		R: 4
		W: 2
		X: 1
	}
}

enum: Color: {
	kind: "enum"
	members: {
		RED:     1
		GREEN:   null
		CRIMSON: 1
	}
}
`

// levelYAML is a YAML definition file picked up by the default include patterns.
const levelYAML = `enums:
  Level:
    kind: int_flag
    members:
      LOW: 1
      HIGH: 2
`

// writeFiles writes files (relative path -> content) below a fresh temp
// directory and returns it.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

// defsDir writes the standard definitions: a CUE package plus one YAML file.
func defsDir(t *testing.T) string {
	t.Helper()
	return writeFiles(t, map[string]string{
		"catalog.cue":           catalogCUE,
		"extra/level.enum.yaml": levelYAML,
	})
}

// execute runs the root command with args and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeCommand(t, NewRootCommand(), args...)
}

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
