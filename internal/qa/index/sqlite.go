// Package index provides the document index behind evidence retrieval:
// SQLite-backed persistence, a corpus loader, and a directory watcher that
// keeps the index in sync with the corpus on disk.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/covenant-qa/server/internal/qa/model"
)

// SQLiteIndex stores agreement documents in SQLite and ranks them against a
// query by keyword overlap. Tenant and category filtering happens in SQL;
// ranking happens in memory over the filtered rows, which is fine at
// agreement-corpus scale.
type SQLiteIndex struct {
	mu   sync.RWMutex
	db   *sql.DB
	topK int
}

// NewSQLiteIndex opens (or creates) the index database under dataPath.
func NewSQLiteIndex(dataPath string, topK int) (*SQLiteIndex, error) {
	if dataPath == "" {
		dataPath = "./data"
	}
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "documents.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	idx := &SQLiteIndex{db: db, topK: topK}
	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return idx, nil
}

func (s *SQLiteIndex) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT NOT NULL,
		tenant_id TEXT NOT NULL DEFAULT '',
		source_path TEXT,
		last_modified DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category);
	CREATE INDEX IF NOT EXISTS idx_documents_tenant ON documents(tenant_id);
	CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source_path);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert inserts or replaces documents by ID.
func (s *SQLiteIndex) Upsert(ctx context.Context, docs []model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO documents (id, title, content, category, tenant_id, source_path, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		_, err = stmt.ExecContext(ctx, d.ID, d.Title, d.Content, d.Category, d.TenantID, d.SourcePath, d.LastModified)
		if err != nil {
			return fmt.Errorf("inserting document %s: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteBySource removes every document ingested from the given file path.
func (s *SQLiteIndex) DeleteBySource(ctx context.Context, sourcePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE source_path = ?", sourcePath)
	return err
}

// Search returns the top-K documents matching the query, restricted to the
// tenant (shared documents have an empty tenant) and the category allow-list.
func (s *SQLiteIndex) Search(ctx context.Context, query, tenantID string, categories []string) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := "WHERE (tenant_id = '' OR tenant_id = ?)"
	args := []any{tenantID}
	if len(categories) > 0 {
		where += " AND category IN (?" + strings.Repeat(", ?", len(categories)-1) + ")"
		for _, c := range categories {
			args = append(args, c)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, category, tenant_id, source_path, last_modified
		FROM documents `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	terms := queryTerms(query)

	var matched []model.Document
	for rows.Next() {
		var d model.Document
		err := rows.Scan(&d.ID, &d.Title, &d.Content, &d.Category, &d.TenantID, &d.SourcePath, &d.LastModified)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		d.Score = overlapScore(terms, d.Title+" "+d.Content)
		if d.Score <= 0 {
			continue
		}
		matched = append(matched, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Score > matched[j].Score
	})
	if s.topK > 0 && len(matched) > s.topK {
		matched = matched[:s.topK]
	}
	return matched, nil
}

// Count returns the number of indexed documents.
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// queryTerms lowercases the query and keeps words longer than three runes,
// deduplicated in order.
func queryTerms(query string) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, w := range strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}

// overlapScore is the fraction of query terms appearing in the text.
func overlapScore(terms []string, text string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}
