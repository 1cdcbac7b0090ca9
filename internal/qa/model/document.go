package model

import (
	"strings"
	"time"
)

// Document is one agreement document as returned by the search collaborator.
// A Document is immutable once retrieved for a request: it lives inside a
// single RequestState and is only read and copied into the outward response.
type Document struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Category     string    `json:"category"`
	TenantID     string    `json:"tenant_id"`
	Score        float64   `json:"score"`
	SourcePath   string    `json:"source_path,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty"`
}

// DocumentSummary is the outward-facing projection of a Document. Content is
// deliberately omitted; citations carry the quoted evidence instead.
type DocumentSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Summary projects the document into its outward form.
func (d Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:       d.ID,
		Title:    d.Title,
		Category: d.Category,
		Score:    d.Score,
	}
}

// ParseCategories splits a comma-separated category allow-list into a
// normalised slice, dropping empty entries.
func ParseCategories(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
