package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProgram(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	return dir
}

func runCheckCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	CheckCmd.SetOut(&out)
	CheckCmd.SetErr(&errOut)
	CheckCmd.SetArgs(args)
	t.Cleanup(func() {
		*showTypes, *dump = false, false
	})
	err := CheckCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCheckShowTypes(t *testing.T) {
	dir := writeProgram(t, map[string]string{
		"main.yaml": "statements:\n  - {kind: assignment, exported: true, pattern: xs, value: {kind: list, elements: [1, 2]}}\n",
	})
	out, _, err := runCheckCmd(t, filepath.Join(dir, "main.yaml"), "--show-types")
	require.NoError(t, err)
	assert.Equal(t, "main.yaml: xs: List<Number>\n", out)
}

func TestCheckReportsErrors(t *testing.T) {
	dir := writeProgram(t, map[string]string{
		"main.yaml": "statements:\n  - missing\n",
	})
	_, errOut, err := runCheckCmd(t, filepath.Join(dir, "main.yaml"))
	require.Error(t, err)
	assert.Contains(t, errOut, "main.yaml:2:5")
	assert.Contains(t, errOut, "variable 'missing' is not defined")
}
