package domain

import (
	"strings"
	"time"
)

const MaxBioLength = 200

// User represents an authenticated identity in the platform.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPatch lists the profile fields a caller wants to change.
type UserPatch struct {
	Name  Optional[string]
	Email Optional[string]
	Bio   Optional[string]
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return !p.Name.Set && !p.Email.Set && !p.Bio.Set
}

// Apply copies the present fields of p onto u. A null or empty bio clears it.
func (u *User) Apply(p UserPatch) {
	if u == nil {
		return
	}
	if p.Name.Set && !p.Name.Null {
		u.Name = p.Name.Value
	}
	if p.Email.Set && !p.Email.Null {
		u.Email = NormalizeEmail(p.Email.Value)
	}
	if p.Bio.Set {
		u.Bio = p.Bio.OrZero()
	}
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Public returns a copy of u without credential material.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	view := *u
	view.PasswordHash = ""
	return &view
}
