package domain

import (
	"strings"
	"time"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "Active"
	UserStatusInactive UserStatus = "Inactive"
	UserStatusPending  UserStatus = "En attente"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusPending:
		return true
	}
	return false
}

// User is a back-office account. Permissions holds the effective permission set,
// either copied from the role or supplied explicitly.
type User struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Email            string       `json:"email"`
	Role             RoleName     `json:"role"`
	Status           UserStatus   `json:"status"`
	Permissions      []Permission `json:"permissions"`
	TwoFactorEnabled bool         `json:"twoFactorEnabled"`
	PasswordHash     string       `json:"passwordHash,omitempty"`
	LastLogin        *time.Time   `json:"lastLogin,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

func (u User) Clone() User {
	out := u
	out.Permissions = append([]Permission(nil), u.Permissions...)
	if u.LastLogin != nil {
		t := *u.LastLogin
		out.LastLogin = &t
	}
	return out
}

// Public strips credentials before the user leaves the process.
func (u User) Public() User {
	out := u.Clone()
	out.PasswordHash = ""
	return out
}

func (u User) Has(p Permission) bool {
	return containsPermission(u.Permissions, p)
}

// Actor returns the authorization view of the user.
func (u User) Actor() *Actor {
	return &Actor{
		ID:          u.ID,
		Name:        u.Name,
		Role:        u.Role,
		Permissions: append([]Permission(nil), u.Permissions...),
	}
}

// NormalizeEmail is the comparison form used for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserFilter struct {
	Role   RoleName
	Status UserStatus
	Search string
}
