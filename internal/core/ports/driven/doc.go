// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Reads PDFs into extracted documents
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Per-paper vector collections (memory, sqlite, Qdrant)
//   - PaperStore, ChunkStore: Paper and chunk record persistence
//   - ConversationStore: Conversation history persistence
//   - ConfigStore: Application configuration
//   - PaperSource: Directory of PDFs for the inbox importer
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Without it, questions cannot be answered, summaries use the
//     extractive fallback and insights return empty defaults.
//   - ProgressReporter, UsageRecorder: Without them, progress and usage are only logged.
//   - PromptStore: Without it, built-in prompt templates are used.
//   - TokenCounter: Without it, usage counts characters.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
