package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

func TestWatchCommand_Once(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out := mustExecute(t, "watch", "/inbox", "--once", "--process")

	assert.Contains(t, out, "paper-2")
	assert.Contains(t, out, "/inbox/bert.pdf")
	assert.Contains(t, out, "1 papers imported")
	assert.Equal(t, "/inbox", ts.inbox.dir)
	assert.Equal(t, domain.InboxOptions{Process: true}, ts.inbox.opts)
}

func TestWatchCommand_OnceJSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.inbox.imported = nil

	out := mustExecute(t, "watch", "/inbox", "--once", "--json")

	var papers []domain.Paper
	require.NoError(t, json.Unmarshal([]byte(out), &papers))
	assert.Empty(t, papers)
}

func TestWatchCommand_Watch(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out := mustExecute(t, "watch", "/inbox", "--reprocess")

	assert.Contains(t, out, "Watching /inbox")
	assert.Contains(t, out, "paper-3")
	assert.Equal(t, domain.InboxOptions{Reprocess: true}, ts.inbox.opts)
}

func TestWatchCommand_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.inbox.err = domain.ErrInvalidInput

	_, err := execute(t, "watch", "/missing", "--once")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWatchCommand_NoService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	inboxService = nil

	_, err := execute(t, "watch", "/inbox")

	assert.ErrorIs(t, err, errInboxServiceMissing)
}

func TestWatchCommand_RequiresDirectory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "watch")

	assert.Error(t, err)
}
