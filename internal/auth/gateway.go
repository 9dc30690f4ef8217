package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// TokenVerifier recovers a user id from a bearer token.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Gateway resolves the acting user of a request from its Authorization header.
type Gateway struct {
	tokens TokenVerifier
	users  repository.UserRepository
	logger *zap.Logger
}

func NewGateway(tokens TokenVerifier, users repository.UserRepository, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{tokens: tokens, users: users, logger: logger}
}

// Authenticate returns the user named by the bearer token in header. The user
// is always reloaded from the store. Every rejection is domain.ErrUnauthorized;
// only store failures surface as internal errors.
func (g *Gateway) Authenticate(ctx context.Context, header string) (*domain.User, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		g.logger.Debug("token rejected")
		return nil, domain.ErrUnauthorized
	}

	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			g.logger.Debug("token subject no longer exists")
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to load user", err)
	}
	return user, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
