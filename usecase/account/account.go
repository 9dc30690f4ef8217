// Package account implements signup and login.
package account

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/validate"
	"github.com/fastygo/taskboard/repository"
)

// Hasher is the credential hashing dependency.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	VerifyDummy(password string)
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// SignupInput is the signup request schema.
type SignupInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// LoginInput is the login request schema.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is what a successful signup or login returns.
type Session struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type UseCase struct {
	users  repository.UserRepository
	hasher Hasher
	tokens TokenIssuer
	logger *zap.Logger
}

func New(users repository.UserRepository, hasher Hasher, tokens TokenIssuer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Signup registers a new user and returns a session for it.
func (uc *UseCase) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	if _, err := uc.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil, uc.internal(ctx, "failed to check email", err)
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, uc.internal(ctx, "failed to hash password", err)
	}

	user, err := uc.users.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			return nil, domain.ErrEmailTaken
		}
		return nil, uc.internal(ctx, "failed to create user", err)
	}

	session, err := uc.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("user signed up", zap.String("user_id", user.ID))
	return session, nil
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords fail with the same error after the same amount of hashing work.
func (uc *UseCase) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := uc.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, uc.internal(ctx, "failed to load user", err)
		}
		uc.hasher.VerifyDummy(in.Password)
		return nil, domain.ErrInvalidCredentials
	}
	if !uc.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	session, err := uc.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("user logged in", zap.String("user_id", user.ID))
	return session, nil
}

func (uc *UseCase) issue(ctx context.Context, user *domain.User) (*Session, error) {
	token, expiresAt, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, uc.internal(ctx, "failed to issue token", err)
	}
	return &Session{User: user.Public(), Token: token, ExpiresAt: expiresAt}, nil
}

func (uc *UseCase) internal(ctx context.Context, msg string, err error) error {
	logger.WithRequestID(ctx, uc.logger).Error(msg, zap.Error(err))
	return domain.WrapError(domain.ErrCodeInternal, msg, err)
}
