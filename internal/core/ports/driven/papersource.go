package driven

import "context"

// PaperSource discovers PDF files under a directory.
type PaperSource interface {
	// Scan returns the absolute paths of all PDFs currently present.
	Scan(ctx context.Context) ([]string, error)

	// Watch emits the absolute path of each PDF that is created or rewritten,
	// once the file has stopped changing. The channel is closed when ctx ends.
	Watch(ctx context.Context) (<-chan string, error)

	// Close releases any watcher resources.
	Close() error
}

// PaperSourceOpener opens a PaperSource rooted at dir.
type PaperSourceOpener func(dir string) (PaperSource, error)
