package auth

import (
	"context"
	"errors"
	"fmt"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/db/repositories"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

type MemberReader interface {
	Get(ctx context.Context, userID int64) (*gormModels.Member, error)
}

// Gate resolves a user's role on every call; results are never cached, so a
// promotion takes effect on the user's next interaction.
type Gate struct {
	members MemberReader
	adminID int64
}

func NewGate(members MemberReader, adminID int64) *Gate {
	return &Gate{members: members, adminID: adminID}
}

// RoleOf returns admin for the configured administrator, otherwise the
// stored role, defaulting to member when there is no record or no role.
func (g *Gate) RoleOf(ctx context.Context, userID int64) (constants.Role, error) {
	if g.adminID != 0 && userID == g.adminID {
		return constants.RoleAdmin, nil
	}

	member, err := g.members.Get(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return constants.RoleMember, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve role: %w", err)
	}
	if member.Role == "" {
		return constants.RoleMember, nil
	}
	return constants.NormalizeRole(string(member.Role)), nil
}

// Actor resolves the full actor for userID.
func (g *Gate) Actor(ctx context.Context, userID int64) (Actor, error) {
	role, err := g.RoleOf(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: userID, Role: role}, nil
}
