package domain

// Summaries holds the three summary lengths of a paper.
type Summaries struct {
	Short  string `json:"short"`
	Medium string `json:"medium"`
	Long   string `json:"long"`
}

// SummaryLength is a (max, min) word budget for one summary.
type SummaryLength struct {
	Name      string
	MaxLength int
	MinLength int
}

// SummaryLengths returns the fixed budgets for short, medium and long summaries.
func SummaryLengths() []SummaryLength {
	return []SummaryLength{
		{Name: "short", MaxLength: 200, MinLength: 100},
		{Name: "medium", MaxLength: 500, MinLength: 200},
		{Name: "long", MaxLength: 1000, MinLength: 400},
	}
}

// SummaryStrategy selects the summarization backend.
type SummaryStrategy string

// Summary strategies.
const (
	// SummaryStrategyAbstractive uses the dedicated summariser model.
	SummaryStrategyAbstractive SummaryStrategy = "abstractive"

	// SummaryStrategyLLM uses the general LLM with a summary prompt.
	SummaryStrategyLLM SummaryStrategy = "llm"

	// SummaryStrategyExtractive skips models and selects sentences.
	SummaryStrategyExtractive SummaryStrategy = "extractive"
)

// IsValid returns true if the strategy is recognised.
func (s SummaryStrategy) IsValid() bool {
	switch s {
	case SummaryStrategyAbstractive, SummaryStrategyLLM, SummaryStrategyExtractive:
		return true
	default:
		return false
	}
}

// KeyInsights is the structured insight record extracted from a paper.
// The zero value, with empty slices, is the default on failure.
type KeyInsights struct {
	KeyFindings []string `json:"key_findings"`
	Methodology string   `json:"methodology"`
	Conclusions string   `json:"conclusions"`
	Limitations []string `json:"limitations"`
	FutureWork  string   `json:"future_work"`
}

// EmptyKeyInsights returns the default insight record.
func EmptyKeyInsights() KeyInsights {
	return KeyInsights{
		KeyFindings: []string{},
		Limitations: []string{},
	}
}
