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

type CommentService struct {
	store  store.Store
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewCommentService(st store.Store, logger *slog.Logger) *CommentService {
	return &CommentService{
		store:  st,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// ListForPost returns the approved comments of one post, oldest first
// for chronological threading.
func (s *CommentService) ListForPost(ctx context.Context, postID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.store.Scan(ctx, store.Comments, store.Filter{
		Eq: map[string]any{"postId": postID, "isApproved": true},
	}, &comments)
	if err != nil {
		return nil, apperr.Store("listing comments for post "+postID, err)
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// Create stores the comment, then bumps the parent post's commentCount
// with an atomic add. The pair is not transactional: if the increment
// fails the comment stays and the count is off by one.
func (s *CommentService) Create(ctx context.Context, postID string, req dto.CreateCommentReq, authorID, authorName string) (*model.Comment, error) {
	if req.Content == "" {
		return nil, apperr.Validation("content is required")
	}

	comment := model.Comment{
		ID:          s.newID(),
		PostID:      postID,
		Content:     req.Content,
		ParentID:    req.ParentID,
		AuthorID:    authorID,
		AuthorName:  authorName,
		CreatedAt:   s.now(),
		IsApproved:  true,
		UpvotedBy:   []string{},
		DownvotedBy: []string{},
	}
	if err := s.store.Put(ctx, store.Comments, comment.ID, comment); err != nil {
		return nil, apperr.Store("creating comment", err)
	}

	err := s.store.Update(ctx, store.Posts, postID, store.Update{
		Add: map[string]int{"commentCount": 1},
	})
	if err != nil {
		// The comment is already stored; the count is off by one until
		// someone reconciles it.
		s.logger.Warn("comment count increment failed", "postId", postID, "commentId", comment.ID, "error", err)
		return nil, apperr.Store("incrementing comment count for post "+postID, err)
	}
	return &comment, nil
}

func (s *CommentService) Vote(ctx context.Context, id, userID string, isUpvote bool) error {
	return castVote(ctx, s.store, store.Comments, "comment", id, userID, isUpvote)
}
