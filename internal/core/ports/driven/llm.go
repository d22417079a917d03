package driven

import "context"

// LLMService is the language model behind answers, summaries, key insights
// and question suggestions. Services accept a nil LLMService: answering then
// fails with domain.ErrAnswerGeneration and summaries fall back to the
// extractive path.
type LLMService interface {
	// Generate completes a single prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat completes a role-tagged message list.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// Summarise writes an abstractive summary between minLength and
	// maxLength words.
	Summarise(ctx context.Context, content string, maxLength, minLength int) (string, error)

	ModelName() string

	// Ping checks reachability and credentials without generating text.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions tunes a Generate call. Zero values use provider defaults.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// ChatMessage is one turn sent to Chat. Role is "system", "user" or
// "assistant".
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a Chat call.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}
