package services

import (
	"context"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

// MemberService is the member directory.
type MemberService struct {
	members MemberStore
}

func NewMemberService(members MemberStore) *MemberService {
	return &MemberService{members: members}
}

// Get returns the member or ErrNotFound.
func (s *MemberService) Get(ctx context.Context, userID int64) (*gormModels.Member, error) {
	m, err := s.members.Get(ctx, userID)
	return m, storageErr("load member", err)
}

// Register stores a new member. Returns false when the user was already
// registered, in which case nothing changes.
func (s *MemberService) Register(ctx context.Context, member *gormModels.Member) (bool, error) {
	member.Role = constants.RoleMember
	created, err := s.members.Create(ctx, member)
	if err != nil {
		return false, storageErr("register member", err)
	}
	if created {
		logging.Info("Member registered", "user_id", member.UserID)
	}
	return created, nil
}

// UpdateField patches one profile column.
func (s *MemberService) UpdateField(ctx context.Context, userID int64, column, value string) error {
	if err := s.members.UpdateField(ctx, userID, column, value); err != nil {
		return storageErr("update member", err)
	}
	logging.Info("Member updated", "user_id", userID, "field", column, "by", actedBy(ctx))
	return nil
}

// SetRole changes a member's role.
func (s *MemberService) SetRole(ctx context.Context, userID int64, role constants.Role) error {
	if err := s.members.SetRole(ctx, userID, role); err != nil {
		return storageErr("set role", err)
	}
	logging.Info("Member role changed", "user_id", userID, "role", role, "by", actedBy(ctx))
	return nil
}

// List returns every member.
func (s *MemberService) List(ctx context.Context) ([]gormModels.Member, error) {
	list, err := s.members.List(ctx)
	return list, storageErr("list members", err)
}

// ListByRole returns the members currently holding role.
func (s *MemberService) ListByRole(ctx context.Context, role constants.Role) ([]gormModels.Member, error) {
	list, err := s.members.ListByRole(ctx, role)
	return list, storageErr("list members by role", err)
}
