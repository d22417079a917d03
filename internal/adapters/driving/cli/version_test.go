package cli

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	version = v
	t.Cleanup(func() { version = original })
}

func TestVersionCmd_Text(t *testing.T) {
	withVersion(t, "1.2.0")

	out := mustExecute(t, "version")

	assert.Contains(t, out, "paperqa version 1.2.0")
	assert.Contains(t, out, runtime.Version())
}

func TestVersionCmd_DevByDefault(t *testing.T) {
	withVersion(t, "dev")

	assert.Contains(t, mustExecute(t, "version"), "paperqa version dev")
}

func TestVersionCmd_JSON(t *testing.T) {
	withVersion(t, "1.2.0")

	out := mustExecute(t, "version", "--json")

	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.0", info.Version)
	assert.Equal(t, runtime.GOOS, info.OS)
}
