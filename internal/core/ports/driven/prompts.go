package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAnswer answers a question from retrieved context.
	// The template expects %s placeholders for chat history, context and question.
	PromptAnswer = "answer"

	// PromptSummarise creates an LLM summary of paper text.
	// The template expects %s (length instruction) and %s (paper text) placeholders.
	PromptSummarise = "summarise"

	// PromptKeyInsights extracts structured JSON insights.
	// The template expects a %s placeholder for the paper text.
	PromptKeyInsights = "key_insights"

	// PromptSuggestQuestions proposes reader questions.
	// The template expects a %s placeholder for the paper summary.
	PromptSuggestQuestions = "suggest_questions"
)
