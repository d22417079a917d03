// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.paperqa.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with PAPERQA_* overrides
//   - PromptStore: user-editable LLM prompt templates
package file
