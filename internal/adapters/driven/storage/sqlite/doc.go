// Package sqlite persists papers and everything derived from them in one
// database file, <dataDir>/paperqa.db (~/.paperqa/data by default), using
// the cgo-free modernc.org/sqlite driver.
//
// A Store hands out the driven stores, all sharing its *sql.DB:
//
//	papers             PaperStore         metadata, summaries, insights
//	paper_chunks       ChunkStore         chunk text and page numbers
//	conversations      ConversationStore  chat history with messages
//	processing_tasks   TaskStore          ingest progress
//	model_usage        UsageStore         tokens and cost per call
//	vector_records     VectorStore        embeddings, cosine search in Go
//
// The connection runs in WAL mode with foreign keys on and a 5s busy
// timeout. Deleting a paper cascades to its chunks and conversations.
//
// Schema changes are numbered migration pairs in migrations/; the applied
// version is kept in schema_migrations.
package sqlite
