package index

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/covenant-qa/server/internal/qa/model"
	logx "github.com/covenant-qa/server/pkg/logger"
)

// CorpusWatcher keeps the index in sync with the corpus directory: created
// and modified files are re-ingested, removed files are dropped from the
// index.
type CorpusWatcher struct {
	watcher *fsnotify.Watcher
	idx     *SQLiteIndex
	dir     string
}

// NewCorpusWatcher watches the corpus directory and its immediate category
// subdirectories.
func NewCorpusWatcher(idx *SQLiteIndex, dir string) (*CorpusWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.Close()
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := w.Add(filepath.Join(dir, entry.Name())); err != nil {
				logx.Warn().Err(err).Str("dir", entry.Name()).Msg("Cannot watch category directory")
			}
		}
	}

	return &CorpusWatcher{watcher: w, idx: idx, dir: dir}, nil
}

// Run processes watch events until the context is cancelled. It is meant to
// run on its own goroutine.
func (c *CorpusWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.handle(ctx, event)
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			logx.Warn().Err(err).Msg("Corpus watcher error")
		}
	}
}

func (c *CorpusWatcher) handle(ctx context.Context, event fsnotify.Event) {
	// A new category subdirectory must itself be watched.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := c.watcher.Add(event.Name); err != nil {
				logx.Warn().Err(err).Str("dir", event.Name).Msg("Cannot watch new category directory")
			}
			return
		}
	}

	if !corpusExtensions[filepath.Ext(event.Name)] {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		doc, err := LoadFile(c.dir, event.Name)
		if err != nil {
			logx.Warn().Err(err).Str("path", event.Name).Msg("Cannot reload corpus file")
			return
		}
		if err := c.idx.Upsert(ctx, []model.Document{*doc}); err != nil {
			logx.Error().Err(err).Str("path", event.Name).Msg("Cannot reindex corpus file")
			return
		}
		logx.Info().Str("path", event.Name).Str("category", doc.Category).Msg("Corpus file indexed")
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		if err := c.idx.DeleteBySource(ctx, event.Name); err != nil {
			logx.Error().Err(err).Str("path", event.Name).Msg("Cannot remove corpus file from index")
			return
		}
		logx.Info().Str("path", event.Name).Msg("Corpus file removed from index")
	}
}

// Close stops the watcher.
func (c *CorpusWatcher) Close() error {
	return c.watcher.Close()
}
