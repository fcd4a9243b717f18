package auth

import "bode-andarilho/agenda/internal/constants"

// Actor is the resolved identity behind one interaction.
type Actor struct {
	UserID int64
	Role   constants.Role
}

// Allows reports whether the actor's role covers required.
func (a Actor) Allows(required constants.Role) bool {
	return a.Role.AtLeast(required)
}

func (a Actor) IsAdmin() bool {
	return a.Role == constants.RoleAdmin
}
