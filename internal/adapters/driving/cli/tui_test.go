package cli

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/messages"
)

func TestTUICommand_Registered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"tui"})

	require.NoError(t, err)
	assert.Equal(t, "tui", cmd.Name())
	assert.Contains(t, cmd.Long, "summary length")
}

func TestNewTUIApp(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	app, err := newTUIApp(cmd)

	require.NoError(t, err)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestNewTUIApp_MissingServices(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	paperService = nil

	_, err := newTUIApp(&cobra.Command{})

	assert.ErrorIs(t, err, tui.ErrMissingPaperService)
}
