package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/domain"
)

// ErrEmptyPassword is returned when hashing an empty plaintext.
var ErrEmptyPassword = domain.NewError(domain.ErrCodeInvalid, "password is required")

// PasswordHasher hashes and verifies passwords with bcrypt. The zero value is
// not usable; build one with NewPasswordHasher.
type PasswordHasher struct {
	cost  int
	dummy []byte
}

// NewPasswordHasher returns a hasher using cost, clamped to bcrypt's valid range.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &PasswordHasher{cost: cost, dummy: dummy}, nil
}

// Hash returns a salted bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. A malformed hash never matches.
func (h *PasswordHasher) Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyDummy burns the same bcrypt work as Verify against a throwaway hash.
// Login calls it for unknown emails so both failure paths take equal time.
func (h *PasswordHasher) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}

// Cost reports the bcrypt work factor in use.
func (h *PasswordHasher) Cost() int {
	return h.cost
}
