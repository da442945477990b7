package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage"
)

// GroupService owns group membership rules. The settlement engine only
// reads member lists; all mutation goes through here.
type GroupService struct {
	store storage.Store
	clock core.Clock
}

func NewGroupService(store storage.Store, clock core.Clock) *GroupService {
	return &GroupService{store: store, clock: clock}
}

// Create persists a group with its creator as the first member.
func (s *GroupService) Create(ctx context.Context, g *core.Group) (*core.Group, error) {
	if strings.TrimSpace(g.Name) == "" {
		return nil, &core.InvalidArgumentError{Reason: "group name is required"}
	}
	if g.CreatorID == 0 {
		return nil, &core.InvalidArgumentError{Reason: "group requires a creator"}
	}
	var out *core.Group
	err := s.store.InTx(ctx, func(st storage.Store) error {
		if _, err := st.Users().Get(ctx, g.CreatorID); err != nil {
			return err
		}
		now := s.clock.Now()
		g.CreatedAt, g.UpdatedAt = now, now
		if err := st.Groups().Save(ctx, g); err != nil {
			return err
		}
		if err := st.Groups().AddMember(ctx, g.ID, g.CreatorID); err != nil {
			return err
		}
		loaded, err := st.Groups().Get(ctx, g.ID)
		if err != nil {
			return err
		}
		out = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Created group",
		"group_id", out.ID,
		"creator_id", out.CreatorID)
	return out, nil
}

// Update modifies a group's name and description.
func (s *GroupService) Update(ctx context.Context, g *core.Group) (*core.Group, error) {
	if strings.TrimSpace(g.Name) == "" {
		return nil, &core.InvalidArgumentError{Reason: "group name is required"}
	}
	var out *core.Group
	err := s.store.InTx(ctx, func(st storage.Store) error {
		existing, err := st.Groups().Get(ctx, g.ID)
		if err != nil {
			return err
		}
		existing.Name = g.Name
		existing.Description = g.Description
		existing.UpdatedAt = s.clock.Now()
		if err := st.Groups().Save(ctx, existing); err != nil {
			return err
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddMember adds a user to the group. Adding an existing member is a
// no-op.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID int64) error {
	return s.store.InTx(ctx, func(st storage.Store) error {
		group, err := st.Groups().Get(ctx, groupID)
		if err != nil {
			return err
		}
		if _, err := st.Users().Get(ctx, userID); err != nil {
			return err
		}
		if group.HasMember(userID) {
			return nil
		}
		if err := st.Groups().AddMember(ctx, groupID, userID); err != nil {
			return err
		}
		group.UpdatedAt = s.clock.Now()
		return st.Groups().Save(ctx, group)
	})
}

// RemoveMember removes a user from the group. The creator cannot leave,
// and nobody leaves while the group has unsettled transactions; existing
// obligations would dangle.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID int64) error {
	return s.store.InTx(ctx, func(st storage.Store) error {
		group, err := st.Groups().Get(ctx, groupID)
		if err != nil {
			return err
		}
		if userID == group.CreatorID {
			return &core.IllegalStateError{Reason: "group creator cannot be removed"}
		}
		if !group.HasMember(userID) {
			return &core.NotFoundError{Entity: "group member", ID: userID}
		}
		unsettled, err := st.Groups().HasUnsettledTransactions(ctx, groupID)
		if err != nil {
			return err
		}
		if unsettled {
			return &core.IllegalStateError{Reason: "group has unsettled transactions"}
		}
		if err := st.Groups().RemoveMember(ctx, groupID, userID); err != nil {
			return err
		}
		group.UpdatedAt = s.clock.Now()
		return st.Groups().Save(ctx, group)
	})
}

// Delete removes a group outright. Refused while any group transaction is
// still unsettled.
func (s *GroupService) Delete(ctx context.Context, groupID int64) error {
	return s.store.InTx(ctx, func(st storage.Store) error {
		if _, err := st.Groups().Get(ctx, groupID); err != nil {
			return err
		}
		unsettled, err := st.Groups().HasUnsettledTransactions(ctx, groupID)
		if err != nil {
			return err
		}
		if unsettled {
			return &core.IllegalStateError{Reason: "group has unsettled transactions"}
		}
		return st.Groups().Delete(ctx, groupID)
	})
}

func (s *GroupService) Get(ctx context.Context, id int64) (*core.Group, error) {
	return s.store.Groups().Get(ctx, id)
}

func (s *GroupService) ByMember(ctx context.Context, userID int64) ([]core.Group, error) {
	return s.store.Groups().ByMember(ctx, userID)
}
