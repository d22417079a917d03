// Package cli provides the cobra command tree for paperqa.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services holds the ports the commands drive.
type Services struct {
	Papers        driving.PaperService
	Chat          driving.ChatService
	Index         driving.IndexService
	Summarization driving.SummarizationService
	Settings      driving.SettingsService
	Extractor     driven.Extractor
	Tasks         driven.TaskStore
	Usage         driven.UsageStore
	Inbox         driving.InboxService
}

var (
	paperService         driving.PaperService
	chatService          driving.ChatService
	indexService         driving.IndexService
	summarizationService driving.SummarizationService
	settingsService      driving.SettingsService
	extractor            driven.Extractor
	taskStore            driven.TaskStore
	usageStore           driven.UsageStore
	inboxService         driving.InboxService
)

var (
	verboseFlag bool
	logJSONFlag bool
	jsonFlag    bool
)

var errPaperServiceMissing = errors.New("paper service not configured")

var rootCmd = &cobra.Command{
	Use:   "paperqa",
	Short: "Ask questions about research papers",
	Long: `paperqa ingests research-paper PDFs, indexes their chunks in a vector
store and answers questions grounded in the retrieved text, citing the
section and page of every source.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
		logger.SetJSON(logJSONFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSONFlag, "log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "print results as JSON")
}

// SetServices wires the command tree to the application services.
func SetServices(s Services) {
	paperService = s.Papers
	chatService = s.Chat
	indexService = s.Index
	summarizationService = s.Summarization
	settingsService = s.Settings
	extractor = s.Extractor
	taskStore = s.Tasks
	usageStore = s.Usage
	inboxService = s.Inbox
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Commands see ctx through cmd.Context().
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
