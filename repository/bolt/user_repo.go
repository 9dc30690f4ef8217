package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/boltdb"
	"github.com/fastygo/taskboard/repository"
)

type userRepository struct {
	db   *bbolt.DB
	opts options
}

// userDocument is the stored form of a user; unlike domain.User it keeps the hash.
type userDocument struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Bio:          u.Bio,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Bio:          d.Bio,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// NewUserRepository creates a bbolt-backed UserRepository.
func NewUserRepository(db *bbolt.DB, opts ...Option) repository.UserRepository {
	return &userRepository{db: db, opts: buildOptions(opts)}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user *domain.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = loadUser(tx, id)
		return err
	})
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = domain.NormalizeEmail(email)
	var user *domain.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(boltdb.BucketUserEmails).Get([]byte(email))
		if id == nil {
			return domain.ErrUserNotFound
		}
		var err error
		user, err = loadUser(tx, string(id))
		return err
	})
	return user, err
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created := *user
	if created.ID == "" {
		created.ID = r.opts.newID()
	}
	created.Email = domain.NormalizeEmail(created.Email)
	now := r.opts.now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	err := r.db.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket(boltdb.BucketUserEmails)
		if emails.Get([]byte(created.Email)) != nil {
			return domain.ErrEmailTaken
		}
		users := tx.Bucket(boltdb.BucketUsers)
		if users.Get([]byte(created.ID)) != nil {
			return fmt.Errorf("user %s already exists", created.ID)
		}
		if err := putUser(tx, &created); err != nil {
			return err
		}
		return emails.Put([]byte(created.Email), []byte(created.ID))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *userRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var updated *domain.User
	err := r.db.Update(func(tx *bbolt.Tx) error {
		user, err := loadUser(tx, id)
		if err != nil {
			return err
		}
		previousEmail := user.Email
		user.Apply(patch)

		if user.Email != previousEmail {
			emails := tx.Bucket(boltdb.BucketUserEmails)
			if owner := emails.Get([]byte(user.Email)); owner != nil && string(owner) != user.ID {
				return domain.ErrEmailTaken
			}
			if err := emails.Delete([]byte(previousEmail)); err != nil {
				return err
			}
			if err := emails.Put([]byte(user.Email), []byte(user.ID)); err != nil {
				return err
			}
		}

		user.UpdatedAt = r.opts.now().UTC()
		if err := putUser(tx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	return updated, err
}

func loadUser(tx *bbolt.Tx, id string) (*domain.User, error) {
	raw := tx.Bucket(boltdb.BucketUsers).Get([]byte(id))
	if raw == nil {
		return nil, domain.ErrUserNotFound
	}
	var doc userDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return doc.toDomain(), nil
}

func putUser(tx *bbolt.Tx, user *domain.User) error {
	payload, err := json.Marshal(toUserDocument(user))
	if err != nil {
		return err
	}
	return tx.Bucket(boltdb.BucketUsers).Put([]byte(user.ID), payload)
}
