package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"forumapi/dto"
	"forumapi/internal/apperr"
	"forumapi/internal/store"
	"forumapi/model"
)

// PresenceWindow is how far back lastSeen may lie for a user to count
// as online.
const PresenceWindow = 5 * time.Minute

type UserService struct {
	store  store.Store
	logger *slog.Logger

	now func() time.Time
}

func NewUserService(st store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: st, logger: logger, now: time.Now}
}

// BestEffortUpsert refreshes the caller's user record: created on first
// sight, lastSeen/isOnline refreshed afterwards. Failures are logged and
// swallowed — the record is a side effect of the request, never a reason
// to fail it.
func (s *UserService) BestEffortUpsert(ctx context.Context, id, username, email string) {
	if err := s.upsert(ctx, id, username, email); err != nil {
		s.logger.Warn("user upsert failed", "userId", id, "error", err)
	}
}

func (s *UserService) upsert(ctx context.Context, id, username, email string) error {
	var existing model.User
	err := s.store.Get(ctx, store.Users, id, &existing)
	if errors.Is(err, store.ErrNotFound) {
		now := s.now()
		return s.store.Put(ctx, store.Users, id, model.User{
			ID:        id,
			Username:  username,
			Email:     email,
			LastSeen:  now,
			IsOnline:  true,
			CreatedAt: now,
		})
	}
	if err != nil {
		return err
	}
	return s.store.Update(ctx, store.Users, id, store.Update{
		Set: map[string]any{"lastSeen": s.now(), "isOnline": true},
	})
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := s.store.Get(ctx, store.Users, id, &user)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Store("reading user "+id, err)
	}
	return &user, nil
}

// Online returns the users seen within the presence window. The stored
// isOnline flag is deliberately ignored here; lastSeen is the source of
// truth for this view.
func (s *UserService) Online(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.store.Scan(ctx, store.Users, store.Filter{
		Gt: map[string]any{"lastSeen": s.now().Add(-PresenceWindow)},
	}, &users)
	if err != nil {
		return nil, apperr.Store("listing online users", err)
	}
	return users, nil
}

// UpdateStatus trusts the caller's isOnline flag and lastSeen timestamp,
// defaulting lastSeen to server time when omitted.
func (s *UserService) UpdateStatus(ctx context.Context, id string, req dto.UpdateStatusReq) error {
	lastSeen := s.now()
	if req.LastSeen != nil {
		lastSeen = *req.LastSeen
	}
	err := s.store.Update(ctx, store.Users, id, store.Update{
		Set: map[string]any{"isOnline": req.IsOnline, "lastSeen": lastSeen},
	})
	if err != nil {
		return apperr.Store("updating status for user "+id, err)
	}
	return nil
}
