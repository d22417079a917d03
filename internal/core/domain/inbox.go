package domain

// InboxOptions controls how discovered PDFs are imported.
type InboxOptions struct {
	// Process runs the ingest pipeline after registering each paper.
	Process bool

	// Reprocess re-runs the pipeline when a known PDF is rewritten.
	Reprocess bool
}
