// Package profile reads and edits the authenticated user's own profile.
package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/validate"
	"github.com/fastygo/taskboard/repository"
)

// UpdateInput is a partial profile edit. Absent fields stay unchanged; a null
// or empty bio clears it. Name and email cannot be cleared.
type UpdateInput struct {
	Name  domain.Optional[string] `json:"name"`
	Email domain.Optional[string] `json:"email"`
	Bio   domain.Optional[string] `json:"bio"`
}

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

// Get returns the stored view of user.
func (uc *UseCase) Get(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	current, err := uc.users.GetByID(ctx, user.ID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, uc.internal(ctx, "failed to load profile", err)
	}
	return current.Public(), nil
}

// Update validates the present fields of in and applies them atomically.
func (uc *UseCase) Update(ctx context.Context, user *domain.User, in UpdateInput) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	patch, err := buildPatch(in)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return uc.Get(ctx, user)
	}

	if patch.Email.Set {
		owner, err := uc.users.GetByEmail(ctx, patch.Email.Value)
		switch {
		case err == nil && owner.ID != user.ID:
			return nil, domain.ErrEmailTaken
		case err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound):
			return nil, uc.internal(ctx, "failed to check email", err)
		}
	}

	updated, err := uc.users.Update(ctx, user.ID, patch)
	if err != nil {
		switch {
		case domain.IsDomainError(err, domain.ErrCodeConflict):
			return nil, domain.ErrEmailTaken
		case domain.IsDomainError(err, domain.ErrCodeNotFound):
			return nil, domain.ErrUnauthorized
		}
		return nil, uc.internal(ctx, "failed to update profile", err)
	}
	logger.WithRequestID(ctx, uc.logger).Info("profile updated", zap.String("user_id", user.ID))
	return updated.Public(), nil
}

func buildPatch(in UpdateInput) (domain.UserPatch, error) {
	var (
		patch  domain.UserPatch
		fields []*domain.FieldError
	)
	if in.Name.Set {
		name := strings.TrimSpace(in.Name.Value)
		if fe := validate.Var("name", name, "required,min=2,max=50"); fe != nil {
			fields = append(fields, fe)
		} else {
			patch.Name = domain.Some(name)
		}
	}
	if in.Email.Set {
		email := domain.NormalizeEmail(in.Email.Value)
		if fe := validate.Var("email", email, "required,email"); fe != nil {
			fields = append(fields, fe)
		} else {
			patch.Email = domain.Some(email)
		}
	}
	if in.Bio.Set {
		bio := strings.TrimSpace(in.Bio.OrZero())
		if fe := validate.Var("bio", bio, "max=200"); fe != nil {
			fields = append(fields, fe)
		} else if bio == "" {
			patch.Bio = domain.Null[string]()
		} else {
			patch.Bio = domain.Some(bio)
		}
	}
	if err := validate.Collect(fields...); err != nil {
		return domain.UserPatch{}, err
	}
	return patch, nil
}

func (uc *UseCase) internal(ctx context.Context, msg string, err error) error {
	logger.WithRequestID(ctx, uc.logger).Error(msg, zap.Error(err))
	return domain.WrapError(domain.ErrCodeInternal, msg, err)
}
