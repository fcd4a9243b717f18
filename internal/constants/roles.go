package constants

import (
	"database/sql/driver"
	"fmt"
)

// Role is the access tier of a user. Stored as text in members.role.
type Role string

const (
	RoleMember    Role = "member"
	RoleSecretary Role = "secretary"
	RoleAdmin     Role = "admin"
)

// Stringer ­– convenient for fmt / logs
func (r Role) String() string { return string(r) }

// Rank orders roles so that admin > secretary > member.
// Unknown or empty roles rank as member.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleSecretary:
		return 2
	default:
		return 1
	}
}

// AtLeast reports whether r grants everything required grants.
func (r Role) AtLeast(required Role) bool {
	return r.Rank() >= required.Rank()
}

// Label is the Portuguese name shown to users.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleSecretary:
		return "Secretário"
	default:
		return "Membro"
	}
}

// NormalizeRole maps stored values, including the legacy numeric levels
// "1", "2" and "3", onto a Role. Anything unknown becomes RoleMember.
func NormalizeRole(v string) Role {
	switch v {
	case "admin", "3":
		return RoleAdmin
	case "secretary", "2":
		return RoleSecretary
	default:
		return RoleMember
	}
}

/* ---------- DB adapters so gorm / sqlx scan and value cleanly ---------- */

// Scan implements the sql.Scanner interface
func (r *Role) Scan(src interface{}) error {
	if src == nil {
		*r = RoleMember
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = NormalizeRole(v)
	case []byte:
		*r = NormalizeRole(string(v))
	case int64:
		*r = NormalizeRole(fmt.Sprint(v))
	default:
		return fmt.Errorf("Role: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r Role) Value() (driver.Value, error) {
	if r == "" {
		return string(RoleMember), nil
	}
	return string(r), nil
}
