package services

import (
	"context"
	"strings"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage"
)

// UserService manages the identity stubs the ledger references.
type UserService struct {
	store storage.Store
	clock core.Clock
}

func NewUserService(store storage.Store, clock core.Clock) *UserService {
	return &UserService{store: store, clock: clock}
}

func (s *UserService) Create(ctx context.Context, u *core.User) (*core.User, error) {
	if strings.TrimSpace(u.Username) == "" {
		return nil, &core.InvalidArgumentError{Reason: "username is required"}
	}
	u.CreatedAt = s.clock.Now()
	if err := s.store.Users().Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*core.User, error) {
	return s.store.Users().Get(ctx, id)
}
