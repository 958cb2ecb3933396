package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/meetmap/pkg/logging"
)

// ChangeEvent represents a batch of file system changes to the
// watched document
type ChangeEvent struct {
	Paths     []string
	Timestamp time.Time
	Removed   bool // the document no longer exists on disk
}

// FileWatcher watches a mindmap document for changes. It watches the
// containing directory rather than the file itself, so editors that
// save by writing a temp file and renaming it over the document are
// still caught.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	document string // absolute path to the watched file
	events   chan ChangeEvent
	done     chan struct{}
	mu       sync.Mutex
}

// NewFileWatcher creates a watcher for one document
func NewFileWatcher(document string) (*FileWatcher, error) {
	abs, err := filepath.Abs(document)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:  watcher,
		document: abs,
		events:   make(chan ChangeEvent, 100),
		done:     make(chan struct{}),
	}

	return fw, nil
}

// Start begins watching for document changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(fw.document)
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logging.Info("started watching document", "path", fw.document)

	// Process events
	go fw.processEvents(ctx)

	return nil
}

// processEvents filters directory events down to the document and
// batches rapid bursts into a single change event
func (fw *FileWatcher) processEvents(ctx context.Context) {
	var changed []string

	flushTimer := time.NewTimer(100 * time.Millisecond)
	flushTimer.Stop()

	flush := func() {
		if len(changed) == 0 {
			return
		}
		_, err := os.Stat(fw.document)
		fw.events <- ChangeEvent{
			Paths:     changed,
			Timestamp: time.Now(),
			Removed:   os.IsNotExist(err),
		}
		changed = nil
	}

	for {
		select {
		case <-ctx.Done():
			fw.watcher.Close()
			close(fw.events)
			close(fw.done)
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// Only the watched document matters; sibling files and
			// editor droppings in the same directory do not
			if filepath.Clean(event.Name) != fw.document {
				continue
			}

			changed = append(changed, event.Name)
			flushTimer.Reset(100 * time.Millisecond)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Document returns the absolute path being watched
func (fw *FileWatcher) Document() string {
	return fw.document
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	close(fw.done)
	return fw.watcher.Close()
}
