package cli

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

var usageSince time.Duration

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show model token usage and estimated cost",
	Long: `Aggregates recorded model calls by operation and model. Costs are
estimated from per-1k-token prices and are zero for local models.`,
	Args: cobra.NoArgs,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().DurationVar(&usageSince, "since", 24*time.Hour, "only include usage newer than this")
	rootCmd.AddCommand(usageCmd)
}

// usageTotal aggregates usage for one operation and model.
type usageTotal struct {
	Operation        domain.OperationType `json:"operation"`
	Model            string               `json:"model"`
	Calls            int                  `json:"calls"`
	PromptTokens     int                  `json:"prompt_tokens"`
	CompletionTokens int                  `json:"completion_tokens"`
	EstimatedCost    decimal.Decimal      `json:"estimated_cost"`
}

func summariseUsage(records []domain.UsageRecord) []usageTotal {
	type key struct {
		op    domain.OperationType
		model string
	}
	totals := make(map[key]*usageTotal)
	for _, r := range records {
		k := key{r.OperationType, r.ModelName}
		t, ok := totals[k]
		if !ok {
			t = &usageTotal{Operation: r.OperationType, Model: r.ModelName}
			totals[k] = t
		}
		t.Calls++
		t.PromptTokens += r.PromptTokens
		t.CompletionTokens += r.CompletionTokens
		t.EstimatedCost = t.EstimatedCost.Add(r.EstimatedCost)
	}

	out := make([]usageTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Operation != out[j].Operation {
			return out[i].Operation < out[j].Operation
		}
		return out[i].Model < out[j].Model
	})
	return out
}

func runUsage(cmd *cobra.Command, _ []string) error {
	if usageStore == nil {
		return errors.New("usage store not configured")
	}

	records, err := usageStore.ListUsage(cmd.Context(), time.Now().Add(-usageSince))
	if err != nil {
		return fmt.Errorf("failed to list usage: %w", err)
	}
	totals := summariseUsage(records)

	if jsonFlag {
		return printJSON(cmd, totals)
	}
	if len(totals) == 0 {
		cmd.Println("No usage recorded.")
		return nil
	}

	cost := decimal.Zero
	cmd.Printf("  %-20s %-26s %6s %10s %10s %10s\n", "OPERATION", "MODEL", "CALLS", "PROMPT", "COMPLETION", "COST")
	for _, t := range totals {
		cmd.Printf("  %-20s %-26s %6d %10d %10d %10s\n",
			t.Operation, t.Model, t.Calls, t.PromptTokens, t.CompletionTokens, t.EstimatedCost.StringFixed(4))
		cost = cost.Add(t.EstimatedCost)
	}
	cmd.Println()
	cmd.Printf("Total estimated cost: $%s\n", cost.StringFixed(4))
	return nil
}
