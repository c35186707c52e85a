package auth

import "strings"

// Role del principal. Las organizaciones y clínicas se autentican con su propio
// ID, que es también el ID de su registro en organizations.
type Role string

const (
	RoleUser         Role = "user"
	RoleOrganization Role = "organization"
	RoleVeterinary   Role = "veterinary"
	RoleAdmin        Role = "admin"
)

func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleOrganization:
		return RoleOrganization
	case RoleVeterinary:
		return RoleVeterinary
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

// Is compara contra uno o más roles.
func (c Claims) Is(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}
