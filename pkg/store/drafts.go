package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/google/uuid"

	"github.com/floe-dev/floectl/pkg/domain"
	"github.com/floe-dev/floectl/pkg/draft"
)

// ErrDraftNotFound is returned for unknown draft IDs
var ErrDraftNotFound = errors.New("draft not found")

// SavedDraft is a draft with its storage identity
type SavedDraft struct {
	ID        string
	Draft     draft.Draft
	UpdatedAt time.Time
}

// draftSQL maps the drafts row
type draftSQL struct {
	ID         string    `db:"id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	RecordType string    `db:"record_type"`
	TagNames   string    `db:"tag_names"`
	Images     string    `db:"images"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// SaveDraft persists a draft. An empty id assigns a new one; the
// assigned id is returned either way.
func (s *Store) SaveDraft(ctx context.Context, id string, d *draft.Draft) (string, error) {
	if id == "" {
		id = uuid.New().String()
	}

	tags, err := json.Marshal(d.Tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	images, err := json.Marshal(d.Images)
	if err != nil {
		return "", fmt.Errorf("marshal images: %w", err)
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err = retrier.Do(ctx, func() error {
		query := `
			INSERT INTO drafts (id, title, content, record_type, tag_names, images, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				content = excluded.content,
				record_type = excluded.record_type,
				tag_names = excluded.tag_names,
				images = excluded.images,
				updated_at = CURRENT_TIMESTAMP
		`
		_, execErr := s.db.ExecContext(ctx, query, id, d.Title, d.Content, string(d.RecordType), tags, images)
		if execErr != nil && !isLockError(execErr) {
			return &criticalError{err: fmt.Errorf("save draft: %w", execErr)}
		}
		return execErr
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// LoadDraft retrieves one saved draft
func (s *Store) LoadDraft(ctx context.Context, id string) (*draft.Draft, error) {
	var row draftSQL
	err := s.db.GetContext(ctx, &row,
		"SELECT id, title, content, record_type, tag_names, images, updated_at FROM drafts WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return row.toDraft()
}

// ListDrafts returns saved drafts, most recently updated first
func (s *Store) ListDrafts(ctx context.Context) ([]SavedDraft, error) {
	var rows []draftSQL
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, title, content, record_type, tag_names, images, updated_at FROM drafts ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}

	result := make([]SavedDraft, 0, len(rows))
	for _, row := range rows {
		d, convErr := row.toDraft()
		if convErr != nil {
			return nil, convErr
		}
		result = append(result, SavedDraft{ID: row.ID, Draft: *d, UpdatedAt: row.UpdatedAt})
	}
	return result, nil
}

// DeleteDraft removes a saved draft, typically after a successful submit
func (s *Store) DeleteDraft(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// toDraft unpacks the JSON columns
func (r *draftSQL) toDraft() (*draft.Draft, error) {
	d := &draft.Draft{
		Title:      r.Title,
		Content:    r.Content,
		RecordType: domain.RecordType(r.RecordType),
	}
	if err := json.Unmarshal([]byte(r.TagNames), &d.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal draft tags: %w", err)
	}
	if err := json.Unmarshal([]byte(r.Images), &d.Images); err != nil {
		return nil, fmt.Errorf("unmarshal draft images: %w", err)
	}
	return d, nil
}
