package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setTestEnv(t *testing.T, apiURL string) {
	t.Helper()
	t.Setenv("FEIKEN_DATA_DIR", t.TempDir())
	t.Setenv("FEIKEN_API_URL", apiURL)
	t.Setenv("FEIKEN_TIMEOUT", "500ms")
}

func TestRoot_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "scan")
	assert.Contains(t, names, "history")
	assert.Contains(t, names, "deviceid")
}

func TestScan_RequiresPayloadArgument(t *testing.T) {
	setTestEnv(t, "http://127.0.0.1:1")
	_, err := runCommand(t, "scan")
	assert.Error(t, err)
}

func TestScan_UnreachableServiceIsFriendlyError(t *testing.T) {
	setTestEnv(t, "http://127.0.0.1:1")

	_, err := runCommand(t, "scan", "FEIKEN_DEMO_QR_123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot reach")
}

func TestDeviceID_PrintsStableID(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("FEIKEN_DATA_DIR", dataDir)

	first, err := runCommand(t, "deviceid")
	require.NoError(t, err)
	second, err := runCommand(t, "deviceid")
	require.NoError(t, err)

	assert.Equal(t, first, second, "device id must be stable across runs")
	assert.Regexp(t, regexp.MustCompile(`\S`), first)
}

func TestRoot_BadConfigFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: [broken"), 0600))

	_, err := runCommand(t, "--config", path, "deviceid")
	assert.Error(t, err)
}
