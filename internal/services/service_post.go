package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"forumapi/dto"
	"forumapi/internal/apperr"
	"forumapi/internal/store"
	"forumapi/model"
)

type PostService struct {
	store  store.Store
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewPostService(st store.Store, logger *slog.Logger) *PostService {
	return &PostService{
		store:  st,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// List returns every approved post, pinned posts first and each
// partition newest-first.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	err := s.store.Scan(ctx, store.Posts, store.Filter{
		Eq: map[string]any{"isApproved": true},
	}, &posts)
	if err != nil {
		return nil, apperr.Store("listing posts", err)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].IsPinned != posts[j].IsPinned {
			return posts[i].IsPinned
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *PostService) Create(ctx context.Context, req dto.CreatePostReq, authorID, authorName string) (*model.Post, error) {
	if req.Title == "" || req.Content == "" {
		return nil, apperr.Validation("title and content are required")
	}

	now := s.now()
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	post := model.Post{
		ID:          s.newID(),
		Title:       req.Title,
		Content:     req.Content,
		Tags:        tags,
		AuthorID:    authorID,
		AuthorName:  authorName,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsApproved:  true,
		UpvotedBy:   []string{},
		DownvotedBy: []string{},
	}
	if err := s.store.Put(ctx, store.Posts, post.ID, post); err != nil {
		return nil, apperr.Store("creating post", err)
	}
	return &post, nil
}

func (s *PostService) Vote(ctx context.Context, id, userID string, isUpvote bool) error {
	return castVote(ctx, s.store, store.Posts, "post", id, userID, isUpvote)
}

// SetPinned flips the pin flag. Idempotent; a missing id is a silent
// no-op, matching the upstream document store's update semantics.
func (s *PostService) SetPinned(ctx context.Context, id string, pinned bool) error {
	err := s.store.Update(ctx, store.Posts, id, store.Update{
		Set: map[string]any{"isPinned": pinned},
	})
	if err != nil {
		return apperr.Store("pinning post "+id, err)
	}
	return nil
}

func (s *PostService) SetLocked(ctx context.Context, id string, locked bool) error {
	err := s.store.Update(ctx, store.Posts, id, store.Update{
		Set: map[string]any{"isLocked": locked},
	})
	if err != nil {
		return apperr.Store("locking post "+id, err)
	}
	return nil
}

// Delete removes the post unconditionally. Comments referencing it are
// left orphaned; there is no cascade.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, store.Posts, id); err != nil {
		return apperr.Store("deleting post "+id, err)
	}
	s.logger.Info("post deleted", "postId", id)
	return nil
}
