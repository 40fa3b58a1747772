package domain

import (
	"fmt"
	"strings"
	"time"
)

// RecordType is the category of a record
type RecordType string

const (
	RecordFloe  RecordType = "FLOE"
	RecordIssue RecordType = "ISSUE"
)

// ParseRecordType normalizes user input to a canonical record type.
// The backend expects upper-case values.
func ParseRecordType(s string) (RecordType, error) {
	switch RecordType(strings.ToUpper(strings.TrimSpace(s))) {
	case RecordFloe:
		return RecordFloe, nil
	case RecordIssue:
		return RecordIssue, nil
	}
	return "", fmt.Errorf("unknown record type %q", s)
}

// RecordSummary is a single record as it appears in feed listings.
// The authoritative copy lives server-side, summaries are read-only here.
type RecordSummary struct {
	RecordID     int64      `json:"recordId"`
	Title        string     `json:"title"`
	RecordType   RecordType `json:"recordType"`
	Nickname     string     `json:"nickname"`
	Thumbnail    string     `json:"thumbnail,omitempty"`
	TagNames     []string   `json:"tagNames,omitempty"`
	LikeCount    int        `json:"likeCount"`
	CommentCount int        `json:"commentCount"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Record is the full record detail
type Record struct {
	RecordSummary
	Content   string   `json:"content"` // rich-text HTML
	MediaURLs []string `json:"mediaUrls,omitempty"`
}

// Pageable carries server-side pagination metadata
type Pageable struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// RecordPage is one fetched page of the feed. Immutable once received,
// owned by the pager's page cache.
type RecordPage struct {
	Content  []RecordSummary `json:"content"`
	Pageable Pageable        `json:"pageable"`
	Last     bool            `json:"last"`
}

// Number returns the 0-based page number
func (p *RecordPage) Number() int { return p.Pageable.PageNumber }

// NextCursor derives the next page number to request. The second return
// is false when this is the last page and no further cursor exists.
func (p *RecordPage) NextCursor() (int, bool) {
	if p.Last {
		return 0, false
	}
	return p.Pageable.PageNumber + 1, true
}
