package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

const UnknownNationality = "UNKNOWN"

// Authorities granted to the role, e.g. "ROLE_USER"
func (r Role) Authorities() []string {
	return []string{"ROLE_" + string(r)}
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type Account struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	Email       string
	Name        string
	Password    string // bcrypt hash; empty for federated-only accounts
	Role        Role
	Nationality string
	Badge       Badge
	PhotoURL    string

	// Last issued refresh token, nil when the account is logged out
	RefreshToken *string
}
