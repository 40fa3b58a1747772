package api

import (
	"context"
	"strconv"

	"github.com/floe-dev/floectl/pkg/domain"
)

// CommentRequest is the payload for posting a comment or a reply.
// ParentID zero posts a top-level comment.
type CommentRequest struct {
	RecordID int64  `json:"recordId"`
	ParentID int64  `json:"parentId,omitempty"`
	Content  string `json:"content"`
}

// PostComment creates a comment on a record. Authenticated.
func (c *Client) PostComment(ctx context.Context, req CommentRequest) (*domain.Comment, error) {
	var result domain.Comment
	if err := c.postJSONAuthed(ctx, "/comments", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListComments fetches one page of a record's top-level comments.
// Authenticated.
func (c *Client) ListComments(ctx context.Context, recordID int64, page, size int) (*domain.CommentPage, error) {
	var result domain.CommentPage
	path := "/comments/" + strconv.FormatInt(recordID, 10)
	if err := c.getJSON(ctx, path, pageQuery(page, size), true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListReplies fetches one page of replies to a comment. Authenticated.
func (c *Client) ListReplies(ctx context.Context, commentID int64, page, size int) (*domain.CommentPage, error) {
	var result domain.CommentPage
	path := "/comments/" + strconv.FormatInt(commentID, 10) + "/replies"
	if err := c.getJSON(ctx, path, pageQuery(page, size), true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
