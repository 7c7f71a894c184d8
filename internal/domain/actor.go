package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the closed set of actor roles. Anything else is rejected at the
// token boundary, so code downstream never compares raw strings.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func ParseRole(v string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(v))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Owns compares ids in canonical form, so an upper-case or braced spelling of
// the owner's uuid still matches.
func (a Actor) Owns(ownerID string) bool {
	if a.ID == "" || ownerID == "" {
		return false
	}
	return canonicalID(a.ID) == canonicalID(ownerID)
}

func canonicalID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}
