package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/covenant-qa/server/internal/qa/model"
	logx "github.com/covenant-qa/server/pkg/logger"
)

// corpus layout: <dir>/<category>/<file>.md. The immediate subdirectory
// names the document category; files at the corpus root fall into a default.
const defaultCategory = "general"

var corpusExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// LoadCorpus walks the corpus directory and indexes every supported file.
// It returns the number of documents indexed. Unreadable files are skipped
// with a warning so one bad file cannot block startup.
func LoadCorpus(ctx context.Context, idx *SQLiteIndex, dir string) (int, error) {
	var docs []model.Document

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !corpusExtensions[filepath.Ext(path)] {
			return nil
		}

		doc, err := LoadFile(dir, path)
		if err != nil {
			logx.Warn().Err(err).Str("path", path).Msg("Skipping unreadable corpus file")
			return nil
		}
		docs = append(docs, *doc)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walking corpus %s: %w", dir, err)
	}

	if len(docs) == 0 {
		return 0, nil
	}
	if err := idx.Upsert(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// LoadFile reads one corpus file into a document. The document ID is derived
// from the path, so re-ingesting a changed file replaces the old row.
func LoadFile(corpusDir, path string) (*model.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	return &model.Document{
		ID:           docID(path),
		Title:        documentTitle(path, string(content)),
		Content:      string(content),
		Category:     documentCategory(corpusDir, path),
		SourcePath:   path,
		LastModified: info.ModTime(),
	}, nil
}

func docID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])[:16]
}

// documentTitle prefers the first markdown heading, falling back to the file
// name with separators spaced out.
func documentTitle(path, content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(after)
		}
		if line != "" {
			break
		}
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ReplaceAll(name, "-", " ")
}

func documentCategory(corpusDir, path string) string {
	rel, err := filepath.Rel(corpusDir, path)
	if err != nil {
		return defaultCategory
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return defaultCategory
	}
	return parts[0]
}
