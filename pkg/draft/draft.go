// Package draft holds the uncommitted record a user is composing: title,
// rich-text content, category, tag set and image attachments. The draft
// is session-scoped mutable state, serialized into a single multipart
// request on submit and kept intact when the submit fails.
package draft

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"

	"github.com/floe-dev/floectl/pkg/api"
	"github.com/floe-dev/floectl/pkg/domain"
)

// Image is one attachment: the on-disk source plus the preview location
// shown while composing. Order is preserved through submission.
type Image struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Preview string `json:"preview"`
}

// Draft is the uncommitted record being composed
type Draft struct {
	Title      string            `json:"title"`
	Content    string            `json:"content"` // rich-text HTML
	RecordType domain.RecordType `json:"recordType"`
	Tags       []string          `json:"tagNames"` // canonical upper-case, insertion order
	Images     []Image           `json:"images"`
}

// New creates an empty draft of the given type
func New(recordType domain.RecordType) *Draft {
	return &Draft{RecordType: recordType}
}

// SetMarkdown converts markdown source to the HTML content the backend
// stores, the editor analog for terminal composition
func (d *Draft) SetMarkdown(src string) error {
	buf := &bytes.Buffer{}
	if err := goldmark.Convert([]byte(src), buf); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	d.Content = buf.String()
	return nil
}

// AddImage attaches an image file to the draft. The file itself is read
// at submit time.
func (d *Draft) AddImage(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve image path %s: %w", path, err)
	}
	if _, err = os.Stat(abs); err != nil {
		return fmt.Errorf("image %s: %w", path, err)
	}
	d.Images = append(d.Images, Image{
		Name:    filepath.Base(abs),
		Path:    abs,
		Preview: "file://" + abs,
	})
	return nil
}

// RemoveImage drops the attachment at the given position
func (d *Draft) RemoveImage(index int) {
	if index < 0 || index >= len(d.Images) {
		return
	}
	d.Images = append(d.Images[:index], d.Images[index+1:]...)
}

// Reset clears the draft back to its just-created state
func (d *Draft) Reset() {
	recordType := d.RecordType
	*d = Draft{RecordType: recordType}
}

// Validate checks the draft is submittable
func (d *Draft) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("draft has no title")
	}
	if d.Content == "" {
		return fmt.Errorf("draft has no content")
	}
	if d.RecordType != domain.RecordFloe && d.RecordType != domain.RecordIssue {
		return fmt.Errorf("draft has no record type")
	}
	return nil
}

// Submitter posts the assembled record, implemented by api.Client
type Submitter interface {
	CreateRecord(ctx context.Context, dto api.RecordDTO, files []api.Upload) (*domain.Record, error)
}

// Invalidator drops cached feed state after a successful submit, so the
// next feed view includes the new record. Implemented by feed.Pager.
type Invalidator interface {
	Reset()
}

// Submit serializes the draft into one multipart request and posts it.
// On success the draft is reset and the feed cache invalidated; on
// failure everything stays in place so the user retries without
// re-entering fields.
func (d *Draft) Submit(ctx context.Context, submitter Submitter, invalidate Invalidator) (*domain.Record, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	files := make([]api.Upload, 0, len(d.Images))
	handles := make([]*os.File, 0, len(d.Images))
	defer func() {
		for _, h := range handles {
			h.Close() //nolint:errcheck // read-only handles
		}
	}()
	for _, img := range d.Images {
		f, err := os.Open(img.Path)
		if err != nil {
			return nil, fmt.Errorf("open image %s: %w", img.Name, err)
		}
		handles = append(handles, f)
		files = append(files, api.Upload{Name: img.Name, Reader: f})
	}

	dto := api.RecordDTO{
		Title:      d.Title,
		Content:    d.Content,
		RecordType: d.RecordType,
		TagNames:   append([]string{}, d.Tags...),
	}

	rec, err := submitter.CreateRecord(ctx, dto, files)
	if err != nil {
		return nil, err
	}

	d.Reset()
	if invalidate != nil {
		invalidate.Reset()
	}
	return rec, nil
}
