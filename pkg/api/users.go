package api

import (
	"context"

	"github.com/floe-dev/floectl/pkg/domain"
)

// CurrentUser returns the profile of the signed-in user
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.getJSON(ctx, "/users", nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
