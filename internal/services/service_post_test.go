package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"forumapi/dto"
	"forumapi/internal/apperr"
	"forumapi/internal/store"
	"forumapi/internal/store/memory"
	"forumapi/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func putPost(t *testing.T, st store.Store, post model.Post) {
	t.Helper()
	require.NoError(t, st.Put(context.Background(), store.Posts, post.ID, post))
}

func TestListPinnedFirstThenNewest(t *testing.T) {
	st := memory.New()
	svc := NewPostService(st, testLogger())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	putPost(t, st, model.Post{ID: "post-aaa", IsPinned: true, IsApproved: true, CreatedAt: base})
	putPost(t, st, model.Post{ID: "post-bbb", IsApproved: true, CreatedAt: base.Add(time.Hour)})
	putPost(t, st, model.Post{ID: "post-ccc", IsPinned: true, IsApproved: true, CreatedAt: base.Add(2 * time.Hour)})

	posts, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"post-ccc", "post-aaa", "post-bbb"},
		lo.Map(posts, func(p model.Post, _ int) string { return p.ID }))
}

func TestListSkipsUnapproved(t *testing.T) {
	st := memory.New()
	svc := NewPostService(st, testLogger())

	putPost(t, st, model.Post{ID: "post-aaa", IsApproved: true})
	putPost(t, st, model.Post{ID: "post-bbb", IsApproved: false})

	posts, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "post-aaa", posts[0].ID)
}

func TestCreateValidatesTitleAndContent(t *testing.T) {
	st := memory.New()
	svc := NewPostService(st, testLogger())
	ctx := context.Background()

	for _, req := range []dto.CreatePostReq{
		{Title: "", Content: "c"},
		{Title: "t", Content: ""},
	} {
		_, err := svc.Create(ctx, req, "user-aaa111", "alice")
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		require.Equal(t, apperr.KindValidation, ae.Kind)
	}

	// Nothing was stored.
	var posts []model.Post
	require.NoError(t, st.Scan(ctx, store.Posts, store.Filter{}, &posts))
	require.Empty(t, posts)
}

func TestCreateDefaults(t *testing.T) {
	st := memory.New()
	svc := NewPostService(st, testLogger())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	post, err := svc.Create(context.Background(), dto.CreatePostReq{Title: "t", Content: "c"}, "user-aaa111", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, post.ID)
	require.True(t, post.IsApproved)
	require.False(t, post.IsPinned)
	require.False(t, post.IsLocked)
	require.Zero(t, post.Upvotes)
	require.Zero(t, post.Downvotes)
	require.Zero(t, post.CommentCount)
	require.Empty(t, post.UpvotedBy)
	require.Equal(t, []string{}, post.Tags)
	require.Equal(t, now, post.CreatedAt)
	require.Equal(t, post.CreatedAt, post.UpdatedAt)
	require.Equal(t, "alice", post.AuthorName)

	var stored model.Post
	require.NoError(t, st.Get(context.Background(), store.Posts, post.ID, &stored))
	require.Equal(t, post.Title, stored.Title)
}

func TestPinLockAndDelete(t *testing.T) {
	st := memory.New()
	svc := NewPostService(st, testLogger())
	ctx := context.Background()

	putPost(t, st, model.Post{ID: "post-aaa", IsApproved: true})

	require.NoError(t, svc.SetPinned(ctx, "post-aaa", true))
	require.NoError(t, svc.SetLocked(ctx, "post-aaa", true))

	var stored model.Post
	require.NoError(t, st.Get(ctx, store.Posts, "post-aaa", &stored))
	require.True(t, stored.IsPinned)
	require.True(t, stored.IsLocked)

	// Idempotent: setting the same value again succeeds.
	require.NoError(t, svc.SetPinned(ctx, "post-aaa", true))

	// Unknown id is a silent no-op, matching the upstream store.
	require.NoError(t, svc.SetPinned(ctx, "post-zzz", true))

	require.NoError(t, svc.Delete(ctx, "post-aaa"))
	err := st.Get(ctx, store.Posts, "post-aaa", &stored)
	require.True(t, errors.Is(err, store.ErrNotFound))
}
