package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/floe-dev/floectl/pkg/domain"
)

// ListRecords fetches one page of the public feed, newest first.
// Unauthenticated.
func (c *Client) ListRecords(ctx context.Context, page, size int) (*domain.RecordPage, error) {
	var result domain.RecordPage
	if err := c.getJSON(ctx, "/records", pageQuery(page, size), false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchFilter is the optional filter set for record search. Zero-valued
// fields are omitted from the query string entirely.
type SearchFilter struct {
	RecordType domain.RecordType
	Title      string
	TagNames   []string
}

// SearchRecords fetches one page of filtered records. Authenticated.
func (c *Client) SearchRecords(ctx context.Context, filter SearchFilter, page, size int) (*domain.RecordPage, error) {
	q := pageQuery(page, size)
	if filter.RecordType != "" {
		q.Set("recordType", string(filter.RecordType))
	}
	if filter.Title != "" {
		q.Set("title", filter.Title)
	}
	for _, tag := range filter.TagNames {
		if tag != "" {
			q.Add("tagNames", tag)
		}
	}

	var result domain.RecordPage
	if err := c.getJSON(ctx, "/records/search", q, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRecord fetches a single record's detail. Unauthenticated.
func (c *Client) GetRecord(ctx context.Context, recordID int64) (*domain.Record, error) {
	var result domain.Record
	if err := c.getJSON(ctx, recordPath(recordID), nil, false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordDTO is the JSON part of a record create/update request
type RecordDTO struct {
	Title      string            `json:"title"`
	Content    string            `json:"content"` // rich-text HTML
	RecordType domain.RecordType `json:"recordType"`
	TagNames   []string          `json:"tagNames"`
}

// Upload is one image attachment for a multipart record submission
type Upload struct {
	Name   string
	Reader io.Reader
}

// CreateRecord submits a new record as one multipart request: the dto as
// a JSON part named "dto" plus each image as a repeated "files" part.
// With zero uploads the request carries only the dto part. Authenticated.
func (c *Client) CreateRecord(ctx context.Context, dto RecordDTO, files []Upload) (*domain.Record, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	dtoHeader := textproto.MIMEHeader{}
	dtoHeader.Set("Content-Disposition", `form-data; name="dto"`)
	dtoHeader.Set("Content-Type", "application/json")
	part, err := mw.CreatePart(dtoHeader)
	if err != nil {
		return nil, fmt.Errorf("create dto part: %w", err)
	}
	if err = json.NewEncoder(part).Encode(dto); err != nil {
		return nil, fmt.Errorf("encode dto: %w", err)
	}

	for _, f := range files {
		fw, ferr := mw.CreateFormFile("files", f.Name)
		if ferr != nil {
			return nil, fmt.Errorf("create file part %s: %w", f.Name, ferr)
		}
		if _, ferr = io.Copy(fw, f.Reader); ferr != nil {
			return nil, fmt.Errorf("copy file %s: %w", f.Name, ferr)
		}
	}
	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/records", nil), body)
	if err != nil {
		return nil, fmt.Errorf("make request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result domain.Record
	if err = c.do(req, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateRecord replaces a record's content. The backend routes updates
// through POST on the record path, not PUT. Authenticated.
func (c *Client) UpdateRecord(ctx context.Context, recordID int64, dto RecordDTO) (*domain.Record, error) {
	var result domain.Record
	if err := c.postJSONAuthed(ctx, recordPath(recordID), dto, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteRecord removes a record. The backend's delete is the POST variant
// of the record path with an empty body. Authenticated.
func (c *Client) DeleteRecord(ctx context.Context, recordID int64) error {
	return c.postJSONAuthed(ctx, recordPath(recordID), nil, nil)
}

func recordPath(recordID int64) string {
	return "/records/" + strconv.FormatInt(recordID, 10)
}
