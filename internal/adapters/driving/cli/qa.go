package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

var (
	searchTopK      int
	searchSection   string
	searchPage      int
	askTopK         int
	askConversation string
	summaryLength   string
	summaryMethod   string
)

var searchCmd = &cobra.Command{
	Use:   "search [paper-id] [query]",
	Short: "Semantic search over a paper's chunks",
	Long: `Embeds the query and returns the closest chunks of the paper, best first.
Results can be restricted to a section or a page.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

var askCmd = &cobra.Command{
	Use:   "ask [paper-id] [question]",
	Short: "Ask a question about a paper",
	Long: `Answers a question from the paper's most relevant chunks and cites the
section and page of each source. A new conversation is started unless
--conversation continues an existing one; the last turns of the
conversation are passed to the model as history.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [paper-id]",
	Short: "Print or generate a paper summary",
	Long: `Prints the stored summary of the given length. With --strategy the summary
is generated again from the paper text.

Strategies:
  abstractive - summarisation model, extractive fallback
  llm         - instruction-following LLM, abstractive fallback
  extractive  - first, middle and last sentences`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

var insightsCmd = &cobra.Command{
	Use:   "insights [paper-id]",
	Short: "Extract key findings, methodology and limitations",
	Args:  cobra.ExactArgs(1),
	RunE:  runInsights,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [paper-id]",
	Short: "Suggest questions to ask about a paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

var historyCmd = &cobra.Command{
	Use:   "history [conversation-id]",
	Short: "Show the messages of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", domain.DefaultTopK, "number of chunks to return")
	searchCmd.Flags().StringVar(&searchSection, "section", "", "only return chunks of this section")
	searchCmd.Flags().IntVar(&searchPage, "page", 0, "only return chunks of this page")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	askCmd.Flags().StringVarP(&askConversation, "conversation", "c", "", "continue an existing conversation")
	summarizeCmd.Flags().StringVarP(&summaryLength, "length", "l", "medium", "summary length: short, medium or long")
	summarizeCmd.Flags().StringVarP(&summaryMethod, "strategy", "s", "", "regenerate with this strategy")

	rootCmd.AddCommand(searchCmd, askCmd, summarizeCmd, insightsCmd, suggestCmd, historyCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if paperService == nil || indexService == nil {
		return errors.New("search service not configured")
	}

	paper, err := readyPaper(cmd, args[0])
	if err != nil {
		return err
	}

	filter := domain.MetadataFilter{}
	if searchSection != "" {
		filter["section"] = searchSection
	}
	if searchPage > 0 {
		filter["page_number"] = searchPage
	}

	results, err := indexService.Search(cmd.Context(), paper.CollectionName, args[1], searchTopK, filter)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonFlag {
		return printJSON(cmd, results)
	}
	renderResults(cmd, results)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	conversationID := askConversation
	if conversationID == "" {
		conv, err := chatService.StartConversation(cmd.Context(), args[0], "")
		if err != nil {
			return fmt.Errorf("failed to start conversation: %w", err)
		}
		conversationID = conv.ID
	}

	answer, err := chatService.Ask(cmd.Context(), conversationID, args[1], askTopK)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if jsonFlag {
		return printJSON(cmd, struct {
			ConversationID string `json:"conversation_id"`
			*domain.Answer
		}{conversationID, answer})
	}
	renderAnswer(cmd, answer)
	cmd.Println()
	cmd.Println(mutedStyle.Render("Conversation: " + conversationID))
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if paperService == nil {
		return errPaperServiceMissing
	}

	length, ok := lookupLength(summaryLength)
	if !ok {
		return fmt.Errorf("%w: unknown summary length %q", domain.ErrInvalidInput, summaryLength)
	}
	paper, err := paperService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get paper: %w", err)
	}

	summary := storedSummary(paper, length.Name)
	if summaryMethod != "" || summary == "" {
		strategy := domain.SummaryStrategy(summaryMethod)
		if summaryMethod != "" && !strategy.IsValid() {
			return fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidInput, summaryMethod)
		}
		if summarizationService == nil {
			return errors.New("summarization service not configured")
		}
		if paper.FullText == "" {
			return fmt.Errorf("%w: paper %s has no extracted text", domain.ErrPaperNotReady, paper.ID)
		}
		summary = summarizationService.Summarize(cmd.Context(), paper.FullText, length.MaxLength, length.MinLength, strategy)
	}

	if jsonFlag {
		return printJSON(cmd, map[string]string{"length": length.Name, "summary": summary})
	}
	cmd.Println(wrap(summary))
	return nil
}

func lookupLength(name string) (domain.SummaryLength, bool) {
	for _, l := range domain.SummaryLengths() {
		if l.Name == strings.ToLower(name) {
			return l, true
		}
	}
	return domain.SummaryLength{}, false
}

func storedSummary(p *domain.Paper, length string) string {
	switch length {
	case "short":
		return p.ShortSummary
	case "long":
		return p.LongSummary
	default:
		return p.MediumSummary
	}
}

func runInsights(cmd *cobra.Command, args []string) error {
	if paperService == nil || summarizationService == nil {
		return errors.New("summarization service not configured")
	}

	paper, err := paperService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get paper: %w", err)
	}
	if paper.FullText == "" {
		return fmt.Errorf("%w: paper %s has no extracted text", domain.ErrPaperNotReady, paper.ID)
	}

	insights := summarizationService.ExtractKeyInsights(cmd.Context(), paper.FullText)
	if jsonFlag {
		return printJSON(cmd, insights)
	}

	if len(insights.KeyFindings) == 0 && insights.Methodology == "" && insights.Conclusions == "" {
		cmd.Println("No insights could be extracted.")
		return nil
	}
	printList(cmd, "Key findings", insights.KeyFindings)
	printBlock(cmd, "Methodology", insights.Methodology)
	printBlock(cmd, "Conclusions", insights.Conclusions)
	printList(cmd, "Limitations", insights.Limitations)
	printBlock(cmd, "Future work", insights.FutureWork)
	return nil
}

func printList(cmd *cobra.Command, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(headerStyle.Render(heading))
	for _, item := range items {
		cmd.Printf("  - %s\n", item)
	}
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	questions, err := chatService.SuggestQuestions(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to suggest questions: %w", err)
	}

	if jsonFlag {
		return printJSON(cmd, questions)
	}
	for i, q := range questions {
		cmd.Printf("  %d. %s\n", i+1, q)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	messages, err := chatService.History(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if jsonFlag {
		return printJSON(cmd, messages)
	}
	if len(messages) == 0 {
		cmd.Println("No messages yet.")
		return nil
	}
	for _, m := range messages {
		cmd.Println(headerStyle.Render(m.Role.Title() + ":"))
		cmd.Println(wrap(m.Content))
		if m.Role == domain.RoleAssistant {
			cmd.Println(mutedStyle.Render(fmt.Sprintf("confidence %.2f, %d sources", m.ConfidenceScore, len(m.CitedChunks))))
		}
		cmd.Println()
	}
	return nil
}

func readyPaper(cmd *cobra.Command, paperID string) (*domain.Paper, error) {
	paper, err := paperService.Get(cmd.Context(), paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}
	if paper.Status != domain.PaperStatusReady {
		return nil, fmt.Errorf("%w: paper %s is %s", domain.ErrPaperNotReady, paper.ID, paper.Status)
	}
	return paper, nil
}
