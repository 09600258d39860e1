package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t-wilkinson/zortex/internal/cli"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "none", Date: "unknown"})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseCommand_Tree(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "notes.zx", "@@Notes\n\n# Topics\n- alpha\n")

	out, err := runCLI(t, "parse", "--color", "never", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Document")
	assert.Contains(t, out, "ArticleHeader")
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, `text="Topics"`)
}

func TestParseCommand_JSON(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "notes.zx", "# A\nKey: value\n")

	out, err := runCLI(t, "parse", "--format", "json", path)
	require.NoError(t, err)

	var result struct {
		Path string `json:"path"`
		Root struct {
			Kind     string `json:"kind"`
			Children []struct {
				Kind     string            `json:"kind"`
				Fields   map[string]string `json:"fields"`
				Children []json.RawMessage `json:"children"`
			} `json:"children"`
		} `json:"root"`
		Diagnostics []json.RawMessage `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Equal(t, path, result.Path)
	assert.Equal(t, "Document", result.Root.Kind)
	require.Len(t, result.Root.Children, 1)
	assert.Equal(t, "Heading", result.Root.Children[0].Kind)
	assert.Equal(t, "A", result.Root.Children[0].Fields["text"])
	assert.Empty(t, result.Diagnostics)
}

func TestParseCommand_TextFormatShowsDiagnostics(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "notes.zx", "- a\n    - b\n  - c\n")

	out, err := runCLI(t, "parse", "--format", "text", "--color", "never", path)
	require.NoError(t, err)
	assert.Contains(t, out, "warning")
	assert.Contains(t, out, "matches no open level")
}

func TestParseCommand_BadFormat(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "notes.zx", "x\n")

	_, err := runCLI(t, "parse", "--format", "sideways", path)
	assert.ErrorContains(t, err, "output format")
}

func TestParseCommand_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, "parse", filepath.Join(t.TempDir(), "absent.zx"))
	assert.Error(t, err)
}

func TestCheckCommand_Clean(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.zx"),
		[]byte("@@A\n\n# H\n- item\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.zortex"),
		[]byte("Key: value\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"),
		[]byte("not zortex"), 0o644))

	out, err := runCLI(t, "check", "--color", "never", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 files clean")
}

func TestCheckCommand_StrictUpgradesIndentation(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "bad.zx", "- a\n    - b\n  - c\n")

	// Misaligned indentation is only a warning by default.
	_, err := runCLI(t, "check", "--color", "never", path)
	require.NoError(t, err)

	// Under --strict it becomes an error.
	out, err := runCLI(t, "check", "--strict", "--color", "never", path)
	assert.ErrorIs(t, err, cli.ErrIssuesFound)
	assert.Contains(t, out, "1 errors")
}

func TestCheckCommand_StrictFailsOnWarnings(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "open.zx", "```\nnever closed\n")

	_, err := runCLI(t, "check", "--color", "never", path)
	require.NoError(t, err)

	out, err := runCLI(t, "check", "--strict", "--color", "never", path)
	assert.ErrorIs(t, err, cli.ErrWarningsFound)
	assert.Contains(t, out, "1 warnings")
}

func TestCheckCommand_Quiet(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "a.zx", "x\n")

	out, err := runCLI(t, "check", "-q", path)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, "version")
	assert.NoError(t, err)
}
