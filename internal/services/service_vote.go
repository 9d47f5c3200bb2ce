package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"forumapi/internal/apperr"
	"forumapi/internal/store"
)

// voteState is the slice of a post or comment the toggle touches. Both
// entities share the exact same vote fields, so one record type covers
// them; unknown fields are left untouched by the conditional update.
type voteState struct {
	Upvotes     int      `bson:"upvotes"     dynamodbav:"upvotes"`
	Downvotes   int      `bson:"downvotes"   dynamodbav:"downvotes"`
	UpvotedBy   []string `bson:"upvotedBy"   dynamodbav:"upvotedBy"`
	DownvotedBy []string `bson:"downvotedBy" dynamodbav:"downvotedBy"`
	Version     int64    `bson:"version"     dynamodbav:"version"`
}

// applyVote removes the user from both membership sets, then adds them
// to the set matching the new intent. Repeating the same vote is a
// no-op; only the opposite vote moves membership. There is no retract.
func applyVote(upvotedBy, downvotedBy []string, userID string, isUpvote bool) (up, down []string) {
	up = lo.Without(upvotedBy, userID)
	down = lo.Without(downvotedBy, userID)
	if isUpvote {
		up = append(up, userID)
	} else {
		down = append(down, userID)
	}
	return up, down
}

const voteAttempts = 3

// castVote runs the toggle as an optimistic read-modify-write: the
// update is conditioned on the version observed by the read, so two
// concurrent voters cannot overwrite each other's membership.
func castVote(ctx context.Context, st store.Store, collection, entity, id, userID string, isUpvote bool) error {
	for attempt := 0; attempt < voteAttempts; attempt++ {
		var cur voteState
		err := st.Get(ctx, collection, id, &cur)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(fmt.Sprintf("%s not found", entity))
		}
		if err != nil {
			return apperr.Store(fmt.Sprintf("reading %s %s", entity, id), err)
		}

		up, down := applyVote(cur.UpvotedBy, cur.DownvotedBy, userID, isUpvote)
		err = st.Update(ctx, collection, id, store.Update{
			Set: map[string]any{
				"upvotes":     len(up),
				"downvotes":   len(down),
				"upvotedBy":   up,
				"downvotedBy": down,
				"version":     cur.Version + 1,
			},
			IfEq: map[string]any{"version": cur.Version},
		})
		if errors.Is(err, store.ErrConditionFailed) {
			continue
		}
		if err != nil {
			return apperr.Store(fmt.Sprintf("voting on %s %s", entity, id), err)
		}
		return nil
	}
	return apperr.Store(fmt.Sprintf("voting on %s %s: too many concurrent updates", entity, id), nil)
}
