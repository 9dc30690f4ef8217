package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/taskboard/domain"
)

type stubUsers struct {
	users map[string]*domain.User
	err   error
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	return u, nil
}

func (s *stubUsers) Update(context.Context, string, domain.UserPatch) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func TestGatewayAuthenticate(t *testing.T) {
	now := time.Now()
	tokens := newTestTokens(t, "gateway-secret", fixedClock(now))
	users := &stubUsers{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Name: "Ann"},
	}}
	gw := NewGateway(tokens, users, nil)

	valid, _, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	orphan, _, err := tokens.Issue("deleted-user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	expired, _, err := newTestTokens(t, "gateway-secret", fixedClock(now.Add(-2*time.Hour))).Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	user, err := gw.Authenticate(context.Background(), "Bearer "+valid)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user = %+v", user)
	}

	rejected := map[string]string{
		"no header":    "",
		"no scheme":    valid,
		"wrong scheme": "Basic " + valid,
		"empty bearer": "Bearer ",
		"garbage":      "Bearer garbage",
		"expired":      "Bearer " + expired,
		"unknown user": "Bearer " + orphan,
	}
	for name, header := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := gw.Authenticate(context.Background(), header)
			if err != domain.ErrUnauthorized {
				t.Errorf("err = %v, want the shared unauthorized error", err)
			}
		})
	}
}

func TestGatewayStoreFailureIsInternal(t *testing.T) {
	tokens := newTestTokens(t, "gateway-secret", fixedClock(time.Now()))
	gw := NewGateway(tokens, &stubUsers{err: errors.New("disk on fire")}, nil)

	token, _, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = gw.Authenticate(context.Background(), "Bearer "+token)
	if !domain.IsDomainError(err, domain.ErrCodeInternal) {
		t.Fatalf("err = %v, want internal", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		if token != tt.token || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, token, ok, tt.token, tt.ok)
		}
	}
}
