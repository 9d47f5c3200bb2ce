package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"forumapi/internal/apperr"
	"forumapi/internal/store"
	"forumapi/internal/store/memory"
	"forumapi/model"
)

func TestVoteToggle(t *testing.T) {
	st := memory.New()
	svc := NewPostService(st, testLogger())
	ctx := context.Background()

	putPost(t, st, model.Post{ID: "post-aaa", IsApproved: true, UpvotedBy: []string{}, DownvotedBy: []string{}})

	read := func() model.Post {
		var p model.Post
		require.NoError(t, st.Get(ctx, store.Posts, "post-aaa", &p))
		return p
	}

	// First upvote.
	require.NoError(t, svc.Vote(ctx, "post-aaa", "user-u1u1u1", true))
	p := read()
	require.Equal(t, 1, p.Upvotes)
	require.Equal(t, 0, p.Downvotes)
	require.Equal(t, []string{"user-u1u1u1"}, p.UpvotedBy)

	// Repeating the same vote changes nothing; there is no retract.
	require.NoError(t, svc.Vote(ctx, "post-aaa", "user-u1u1u1", true))
	p = read()
	require.Equal(t, 1, p.Upvotes)
	require.Equal(t, []string{"user-u1u1u1"}, p.UpvotedBy)

	// The opposite vote moves membership.
	require.NoError(t, svc.Vote(ctx, "post-aaa", "user-u1u1u1", false))
	p = read()
	require.Equal(t, 0, p.Upvotes)
	require.Equal(t, 1, p.Downvotes)
	require.Empty(t, p.UpvotedBy)
	require.Equal(t, []string{"user-u1u1u1"}, p.DownvotedBy)
}

func TestVoteCountersMatchMembership(t *testing.T) {
	st := memory.New()
	svc := NewPostService(st, testLogger())
	ctx := context.Background()

	putPost(t, st, model.Post{ID: "post-aaa", IsApproved: true})

	voters := []string{"user-u1u1u1", "user-u2u2u2", "user-u3u3u3"}
	for i, v := range voters {
		require.NoError(t, svc.Vote(ctx, "post-aaa", v, i%2 == 0))
	}

	var p model.Post
	require.NoError(t, st.Get(ctx, store.Posts, "post-aaa", &p))
	require.Equal(t, p.Upvotes, len(p.UpvotedBy))
	require.Equal(t, p.Downvotes, len(p.DownvotedBy))
	require.Equal(t, 2, p.Upvotes)
	require.Equal(t, 1, p.Downvotes)
}

func TestVoteMissingEntityIs404(t *testing.T) {
	st := memory.New()
	posts := NewPostService(st, testLogger())
	comments := NewCommentService(st, testLogger())
	ctx := context.Background()

	err := posts.Vote(ctx, "post-zzz", "user-u1u1u1", true)
	require.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))
	require.Contains(t, err.Error(), "post not found")

	err = comments.Vote(ctx, "comment-zzz", "user-u1u1u1", true)
	require.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))
	require.Contains(t, err.Error(), "comment not found")
}

// conflictingStore reports a stale version a fixed number of times
// before letting the update through, simulating a concurrent writer.
type conflictingStore struct {
	store.Store
	conflicts int
}

func (c *conflictingStore) Update(ctx context.Context, collection, id string, upd store.Update) error {
	if len(upd.IfEq) > 0 && c.conflicts > 0 {
		c.conflicts--
		return store.ErrConditionFailed
	}
	return c.Store.Update(ctx, collection, id, upd)
}

func TestVoteRetriesOnVersionConflict(t *testing.T) {
	st := &conflictingStore{Store: memory.New(), conflicts: 2}
	svc := NewPostService(st, testLogger())
	ctx := context.Background()

	putPost(t, st, model.Post{ID: "post-aaa", IsApproved: true})

	require.NoError(t, svc.Vote(ctx, "post-aaa", "user-u1u1u1", true))

	var p model.Post
	require.NoError(t, st.Get(ctx, store.Posts, "post-aaa", &p))
	require.Equal(t, 1, p.Upvotes)
}

func TestVoteGivesUpAfterRepeatedConflicts(t *testing.T) {
	st := &conflictingStore{Store: memory.New(), conflicts: voteAttempts}
	svc := NewPostService(st, testLogger())
	ctx := context.Background()

	putPost(t, st, model.Post{ID: "post-aaa", IsApproved: true})

	err := svc.Vote(ctx, "post-aaa", "user-u1u1u1", true)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, apperr.KindStore, ae.Kind)
	require.Contains(t, ae.Message, "too many concurrent updates")
}
