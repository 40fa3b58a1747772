package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/floe-dev/floectl/pkg/domain"
)

// LikeCountResponse carries a record's like count
type LikeCountResponse struct {
	RecordID  int64 `json:"recordId"`
	LikeCount int   `json:"likeCount"`
	Liked     bool  `json:"liked"` // whether the current user likes it
}

// Like adds the current user's like to a record. Authenticated.
func (c *Client) Like(ctx context.Context, recordID int64) error {
	return c.postJSONAuthed(ctx, likesPath(recordID), struct{}{}, nil)
}

// Unlike removes the current user's like from a record. Authenticated.
func (c *Client) Unlike(ctx context.Context, recordID int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url(likesPath(recordID), nil), http.NoBody)
	if err != nil {
		return fmt.Errorf("make request: %w", err)
	}
	return c.do(req, true, nil)
}

// LikeCount fetches a record's like count. Authenticated.
func (c *Client) LikeCount(ctx context.Context, recordID int64) (*LikeCountResponse, error) {
	var result LikeCountResponse
	if err := c.getJSON(ctx, likesPath(recordID), nil, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LikeList fetches the users who liked a record. Authenticated.
func (c *Client) LikeList(ctx context.Context, recordID int64) ([]domain.LikeEntry, error) {
	var result struct {
		LikeList []domain.LikeEntry `json:"likeList"`
	}
	if err := c.getJSON(ctx, recordPath(recordID)+"/like-list", nil, true, &result); err != nil {
		return nil, err
	}
	return result.LikeList, nil
}

func likesPath(recordID int64) string {
	return recordPath(recordID) + "/likes"
}
