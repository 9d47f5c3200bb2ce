package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"forumapi/dto"
	"forumapi/internal/services"
	"forumapi/internal/store"
	"forumapi/internal/store/memory"
	"forumapi/model"
)

func newTestDispatcher(t *testing.T, st store.Store, devMode bool) *Dispatcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(
		services.NewPostService(st, logger),
		services.NewCommentService(st, logger),
		services.NewUserService(st, logger),
		logger,
		devMode,
	)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestOptionsShortCircuits(t *testing.T) {
	st := memory.New()
	d := newTestDispatcher(t, st, true)

	resp := d.Handle(context.Background(), Request{
		Method:   http.MethodOptions,
		Path:     "/posts",
		Identity: &Identity{Subject: "user-aaa111", Username: "alice"},
	})

	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	require.Nil(t, resp.Body)

	// OPTIONS returns before the user upsert runs.
	var users []model.User
	require.NoError(t, st.Scan(context.Background(), store.Users, store.Filter{}, &users))
	require.Empty(t, users)
}

func TestRouteNotFoundEchoesPathAndMethod(t *testing.T) {
	d := newTestDispatcher(t, memory.New(), true)

	resp := d.Handle(context.Background(), Request{Method: http.MethodGet, Path: "/nope"})

	require.Equal(t, http.StatusNotFound, resp.Status)
	body, isErr := resp.Body.(dto.ErrorResponse)
	require.True(t, isErr)
	require.Equal(t, "/nope", body.Path)
	require.Equal(t, http.MethodGet, body.Method)
}

func TestCreateListAndVoteFlow(t *testing.T) {
	st := memory.New()
	d := newTestDispatcher(t, st, true)
	ctx := context.Background()
	identity := &Identity{Subject: "user-aaa111", Username: "alice"}

	resp := d.Handle(ctx, Request{
		Method:   http.MethodPost,
		Path:     "/posts",
		Body:     mustJSON(t, dto.CreatePostReq{Title: "hello", Content: "world"}),
		Identity: identity,
	})
	require.Equal(t, http.StatusCreated, resp.Status)
	post, isPost := resp.Body.(*model.Post)
	require.True(t, isPost)
	require.Equal(t, "alice", post.AuthorName)

	// The authenticated request upserted the caller's user record.
	var users []model.User
	require.NoError(t, st.Scan(ctx, store.Users, store.Filter{}, &users))
	require.Len(t, users, 1)
	require.Equal(t, "user-aaa111", users[0].ID)

	resp = d.Handle(ctx, Request{
		Method:   http.MethodPost,
		Path:     "/posts/" + post.ID + "/vote",
		Body:     mustJSON(t, dto.VoteReq{IsUpvote: true}),
		Identity: identity,
	})
	require.Equal(t, http.StatusOK, resp.Status)

	resp = d.Handle(ctx, Request{Method: http.MethodGet, Path: "/posts"})
	require.Equal(t, http.StatusOK, resp.Status)
	list, isList := resp.Body.([]model.Post)
	require.True(t, isList)
	require.Len(t, list, 1)
	require.Equal(t, 1, list[0].Upvotes)
	require.Equal(t, []string{"user-aaa111"}, list[0].UpvotedBy)
}

func TestValidationErrorIs400(t *testing.T) {
	d := newTestDispatcher(t, memory.New(), true)

	resp := d.Handle(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/posts",
		Body:   mustJSON(t, dto.CreatePostReq{Title: "", Content: "body"}),
	})

	require.Equal(t, http.StatusBadRequest, resp.Status)
	body, isErr := resp.Body.(dto.ErrorResponse)
	require.True(t, isErr)
	require.Contains(t, body.Error, "title and content are required")
}

// failingStore fails every operation against one collection, leaving the
// rest to the wrapped store.
type failingStore struct {
	store.Store
	collection string
}

var errBoom = errors.New("boom")

func (f *failingStore) Get(ctx context.Context, collection, id string, dest any) error {
	if collection == f.collection {
		return errBoom
	}
	return f.Store.Get(ctx, collection, id, dest)
}

func (f *failingStore) Put(ctx context.Context, collection, id string, doc any) error {
	if collection == f.collection {
		return errBoom
	}
	return f.Store.Put(ctx, collection, id, doc)
}

func (f *failingStore) Scan(ctx context.Context, collection string, filter store.Filter, dest any) error {
	if collection == f.collection {
		return errBoom
	}
	return f.Store.Scan(ctx, collection, filter, dest)
}

func TestUserUpsertFailureDoesNotBlockRequest(t *testing.T) {
	st := &failingStore{Store: memory.New(), collection: store.Users}
	d := newTestDispatcher(t, st, true)

	resp := d.Handle(context.Background(), Request{
		Method:   http.MethodPost,
		Path:     "/posts",
		Body:     mustJSON(t, dto.CreatePostReq{Title: "t", Content: "c"}),
		Identity: &Identity{Subject: "user-aaa111"},
	})

	require.Equal(t, http.StatusCreated, resp.Status)
}

func TestStoreErrorStackGatedByDevMode(t *testing.T) {
	st := &failingStore{Store: memory.New(), collection: store.Posts}

	resp := newTestDispatcher(t, st, false).Handle(context.Background(),
		Request{Method: http.MethodGet, Path: "/posts"})
	require.Equal(t, http.StatusInternalServerError, resp.Status)
	body := resp.Body.(dto.ErrorResponse)
	require.Contains(t, body.Error, "boom")
	require.Empty(t, body.Stack)

	resp = newTestDispatcher(t, st, true).Handle(context.Background(),
		Request{Method: http.MethodGet, Path: "/posts"})
	body = resp.Body.(dto.ErrorResponse)
	require.NotEmpty(t, body.Stack)
}

func TestDisplayNameFallsBackToEmailLocalPart(t *testing.T) {
	require.Equal(t, "alice", Identity{Username: "alice", Email: "bob@example.com"}.DisplayName())
	require.Equal(t, "bob", Identity{Email: "bob@example.com"}.DisplayName())
	require.Equal(t, "Anonymous", Identity{}.DisplayName())
}
