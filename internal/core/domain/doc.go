// Package domain defines the core records of the paper QA pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the typed records passed between pipeline stages:
//
//   - ExtractedDocument: Text, pages, metadata and sections of a PDF
//   - Chunk: A retrievable excerpt of document text
//   - RetrievedResult: A chunk returned by similarity search
//   - Answer: A generated answer with sources and token accounting
//   - Paper, Conversation, TaskUpdate, UsageRecord: collaborator records
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, value-type libraries (shopspring/decimal)
//   - Cannot Import: Any internal/ package, any service or adapter dependency
package domain
