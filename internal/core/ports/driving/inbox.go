package driving

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// InboxService imports PDFs dropped into a directory.
type InboxService interface {
	// Import registers every PDF under dir that is not yet a paper.
	Import(ctx context.Context, dir string, opts domain.InboxOptions) ([]domain.Paper, error)

	// Watch imports dir, then keeps registering new PDFs until ctx ends.
	// Each registered paper is passed to added.
	Watch(ctx context.Context, dir string, opts domain.InboxOptions, added func(domain.Paper)) error
}
