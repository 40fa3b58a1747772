package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floe-dev/floectl/pkg/domain"
	"github.com/floe-dev/floectl/pkg/draft"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := Config{
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	return s
}

func TestStore_Token(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	t.Run("no token stored", func(t *testing.T) {
		_, err := s.Token(ctx)
		assert.ErrorIs(t, err, ErrNotSignedIn)

		_, err = s.AccessToken(ctx)
		assert.ErrorIs(t, err, ErrNotSignedIn)
	})

	t.Run("save and load", func(t *testing.T) {
		token := domain.Token{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		}
		require.NoError(t, s.SaveToken(ctx, token))

		loaded, err := s.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "access-1", loaded.AccessToken)
		assert.Equal(t, "refresh-1", loaded.RefreshToken)
		assert.Equal(t, token.ExpiresAt.Unix(), loaded.ExpiresAt.Unix())

		access, err := s.AccessToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "access-1", access)
	})

	t.Run("second save replaces", func(t *testing.T) {
		require.NoError(t, s.SaveToken(ctx, domain.Token{AccessToken: "access-2", RefreshToken: "refresh-2"}))
		loaded, err := s.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "access-2", loaded.AccessToken)
		assert.True(t, loaded.ExpiresAt.IsZero(), "zero expiry stored as null")
	})

	t.Run("expired token refuses to sign requests", func(t *testing.T) {
		expired := domain.Token{
			AccessToken:  "stale",
			RefreshToken: "stale-r",
			ExpiresAt:    time.Now().Add(-time.Minute),
		}
		require.NoError(t, s.SaveToken(ctx, expired))
		_, err := s.AccessToken(ctx)
		assert.ErrorIs(t, err, ErrNotSignedIn)
	})

	t.Run("clear token", func(t *testing.T) {
		require.NoError(t, s.ClearToken(ctx))
		_, err := s.Token(ctx)
		assert.ErrorIs(t, err, ErrNotSignedIn)
	})
}

func TestStore_Drafts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	t.Run("save assigns id and round-trips", func(t *testing.T) {
		d := draft.New(domain.RecordFloe)
		d.Title = "wip"
		d.Content = "<p>half done</p>"
		d.AddTag("go")

		id, err := s.SaveDraft(ctx, "", d)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		loaded, err := s.LoadDraft(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "wip", loaded.Title)
		assert.Equal(t, "<p>half done</p>", loaded.Content)
		assert.Equal(t, domain.RecordFloe, loaded.RecordType)
		assert.Equal(t, []string{"GO"}, loaded.Tags)
	})

	t.Run("save with id updates in place", func(t *testing.T) {
		d := draft.New(domain.RecordIssue)
		d.Title = "v1"
		id, err := s.SaveDraft(ctx, "", d)
		require.NoError(t, err)

		d.Title = "v2"
		sameID, err := s.SaveDraft(ctx, id, d)
		require.NoError(t, err)
		assert.Equal(t, id, sameID)

		loaded, err := s.LoadDraft(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "v2", loaded.Title)
	})

	t.Run("list newest first", func(t *testing.T) {
		drafts, err := s.ListDrafts(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(drafts), 2)
		for i := 1; i < len(drafts); i++ {
			assert.False(t, drafts[i].UpdatedAt.After(drafts[i-1].UpdatedAt))
		}
	})

	t.Run("delete", func(t *testing.T) {
		d := draft.New(domain.RecordFloe)
		d.Title = "short lived"
		id, err := s.SaveDraft(ctx, "", d)
		require.NoError(t, err)

		require.NoError(t, s.DeleteDraft(ctx, id))
		_, err = s.LoadDraft(ctx, id)
		assert.ErrorIs(t, err, ErrDraftNotFound)
		assert.ErrorIs(t, s.DeleteDraft(ctx, id), ErrDraftNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.LoadDraft(ctx, "nope")
		assert.ErrorIs(t, err, ErrDraftNotFound)
	})
}
