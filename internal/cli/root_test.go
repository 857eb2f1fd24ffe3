package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and stdin. HOME points at
// an empty directory so no user config file is read.
func executeCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "dtengine", cmd.Use)
	assert.Contains(t, cmd.Long, "canonical data types")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"types", "resolve", "coerce", "reports"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
}

func TestCoerceCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	coerceCmd, _, err := cmd.Find([]string{"coerce"})
	require.NoError(t, err)

	typeFlag := coerceCmd.Flags().Lookup("type")
	require.NotNil(t, typeFlag)
	assert.Equal(t, "t", typeFlag.Shorthand)

	inputFlag := coerceCmd.Flags().Lookup("input")
	require.NotNil(t, inputFlag)
	assert.Equal(t, "-", inputFlag.DefValue)

	for _, name := range []string{"csv-column", "schema", "definition", "db", "metrics"} {
		assert.NotNil(t, coerceCmd.Flags().Lookup(name), "coerce should have --%s", name)
	}
}

func TestReportsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	reportsCmd, _, err := cmd.Find([]string{"reports"})
	require.NoError(t, err)

	assert.NotNil(t, reportsCmd.Flags().Lookup("db"))
	assert.NotNil(t, reportsCmd.Flags().Lookup("fingerprint"))
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := executeCommand(t, "", "types", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigFormatDefault(t *testing.T) {
	path := writeFile(t, "config.yaml", "format: json\n")

	stdout, _, err := executeCommand(t, "", "resolve", "int", "--config", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, `{"status":"ok"`), "config format should apply: %s", stdout)
}

// writeFile writes content to name in a temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
