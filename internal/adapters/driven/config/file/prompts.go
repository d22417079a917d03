package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves prompt templates from <dir>/<name>.txt, writing the
// defaults there on first use so users can edit them. An edited template
// whose %s placeholder count differs from the default is ignored with a
// warning, since filling it would garble the prompt.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts seed the prompt directory and back missing files.
//
//nolint:lll
var defaultPrompts = map[string]string{
	driven.PromptAnswer: `You are a helpful AI assistant specialized in analyzing research papers.
Use the following context from the paper to answer the question.
If you cannot find the answer in the context, say so honestly.
Always cite which part of the paper you're referencing.

Previous conversation:
%s

Context from paper:
%s

Question: %s

Answer (be specific and cite sources):`,

	driven.PromptSummarise: `Summarize the following research paper in %s.
Focus on: main contributions, methodology, key findings, and conclusions.

Paper text:
%s

Summary:`,

	driven.PromptKeyInsights: `Analyze this research paper and extract the following information in JSON format:

{
    "key_findings": ["finding 1", "finding 2", ...],
    "methodology": "brief description of methods used",
    "conclusions": "main conclusions",
    "limitations": ["limitation 1", "limitation 2", ...],
    "future_work": "suggested future research directions"
}

Paper text:
%s

JSON output:`,

	driven.PromptSuggestQuestions: `Based on this research paper summary, suggest 5 interesting questions
that a reader might want to ask about the paper.

Summary:
%s

Questions (one per line):`,
}

// DefaultPrompt returns the embedded default for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore returns a store rooted at promptDir, or
// ~/.paperqa/prompts when empty. No I/O happens until the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name, falling back to the default when
// the file is missing, unreadable or has the wrong placeholders.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	def, hasDefault := defaultPrompts[name]
	prompt, err := s.loadFromFile(name)
	switch {
	case err != nil && !hasDefault:
		if s.initErr != nil {
			return "", fmt.Errorf("load prompt %q: %w", name, s.initErr)
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		prompt = def
	case hasDefault && placeholders(prompt) != placeholders(def):
		logger.Warn("prompt %s: expected %d %%s placeholders, found %d; using default",
			s.path(name), placeholders(def), placeholders(prompt))
		prompt = def
	}

	s.mu.Lock()
	if existing, ok := s.cache[name]; ok {
		prompt = existing
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()
	return prompt, nil
}

// placeholders counts the %s verbs a template is filled with.
func placeholders(template string) int {
	return strings.Count(template, "%s") - strings.Count(template, "%%s")
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise writes the directory, missing default files and a README.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := s.path(name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# paperqa prompts

This directory contains the prompts paperqa sends to the configured LLM.

## Files

- ` + "`answer.txt`" + ` - Answers a question from retrieved paper chunks
- ` + "`summarise.txt`" + ` - Summarises a paper at a requested length
- ` + "`key_insights.txt`" + ` - Extracts findings, methodology and conclusions as JSON
- ` + "`suggest_questions.txt`" + ` - Suggests reader questions from a summary

## Customisation

Edit any file to customise LLM behaviour. Changes take effect on the next
command. Delete a file to restore its default.

## Format Placeholders

Prompts use Go fmt placeholders, filled in order:
- answer: conversation history, context, question
- summarise: length instruction, paper text
- key_insights: paper text
- suggest_questions: summary

Keep every ` + "`%s`" + ` when editing. The key_insights reply must stay JSON.
`
	return os.WriteFile(path, []byte(content), 0600)
}
