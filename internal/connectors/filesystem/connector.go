// Package filesystem provides a PaperSource over a local directory of PDFs.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.PaperSource = (*Connector)(nil)

// DefaultSettle is how long a file must stay unchanged before it is emitted.
const DefaultSettle = 750 * time.Millisecond

// Connector scans and watches a directory tree for PDF files.
// Hidden files and directories are skipped.
type Connector struct {
	root   string
	settle time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// Option configures a Connector.
type Option func(*Connector)

// WithSettle sets the quiet period before a changed file is emitted.
func WithSettle(d time.Duration) Option {
	return func(c *Connector) {
		if d > 0 {
			c.settle = d
		}
	}
}

// New creates a connector rooted at root.
func New(root string, opts ...Option) (*Connector, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, abs)
	}

	c := &Connector{root: abs, settle: DefaultSettle}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Open is a driven.PaperSourceOpener.
func Open(dir string) (driven.PaperSource, error) {
	return New(dir)
}

// Root returns the absolute root directory.
func (c *Connector) Root() string {
	return c.root
}

// Scan returns every PDF under the root, sorted by path.
func (c *Connector) Scan(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("scan %s: %v", path, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != c.root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsPDF(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", c.root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Watch starts an fsnotify watcher over the tree. New subdirectories are
// added as they appear. Each PDF path is emitted once per burst of writes.
func (c *Connector) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := c.addTree(watcher, c.root); err != nil {
		watcher.Close()
		return nil, err
	}

	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	out := make(chan string)
	go c.loop(ctx, watcher, out)
	return out, nil
}

func (c *Connector) loop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- string) {
	defer close(out)
	defer c.Close()

	settled := make(chan string)
	done := make(chan struct{})
	defer close(done)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			c.handleEvent(watcher, event, pending, func(path string) {
				select {
				case settled <- path:
				case <-done:
				}
			})

		case path := <-settled:
			delete(pending, path)
			select {
			case out <- path:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", c.root, err)
		}
	}
}

func (c *Connector) handleEvent(
	watcher *fsnotify.Watcher,
	event fsnotify.Event,
	pending map[string]*time.Timer,
	emit func(string),
) {
	if isHidden(filepath.Base(event.Name)) {
		return
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if t, ok := pending[event.Name]; ok {
			t.Stop()
			delete(pending, event.Name)
		}
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := c.addTree(watcher, event.Name); err != nil {
				logger.Warn("watch new directory %s: %v", event.Name, err)
			}
			return
		}
	}
	if !IsPDF(event.Name) {
		return
	}

	path := event.Name
	if t, ok := pending[path]; ok {
		t.Reset(c.settle)
		return
	}
	pending[path] = time.AfterFunc(c.settle, func() { emit(path) })
}

// addTree registers dir and its non-hidden subdirectories with the watcher.
func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Close stops the watcher if one is running.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	if errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return err
}

// IsPDF reports whether path has a .pdf extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
