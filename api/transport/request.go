package transport

import (
	"encoding/json"

	"github.com/fastygo/taskboard/domain"
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdateRequest struct {
	Name  domain.Optional[string] `json:"name"`
	Email domain.Optional[string] `json:"email"`
	Bio   domain.Optional[string] `json:"bio"`
}

// ownerFields are tolerated on task payloads and never read: the owner is
// always the authenticated user. Other read-only task fields such as id and
// createdAt are still rejected as unknown.
type ownerFields struct {
	User   json.RawMessage `json:"user,omitempty"`
	UserID json.RawMessage `json:"userId,omitempty"`
	Owner  json.RawMessage `json:"owner,omitempty"`
}

type TaskCreateRequest struct {
	ownerFields
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

type TaskUpdateRequest struct {
	ownerFields
	Title       domain.Optional[string] `json:"title"`
	Description domain.Optional[string] `json:"description"`
	Status      domain.Optional[string] `json:"status"`
	Priority    domain.Optional[string] `json:"priority"`
	DueDate     domain.Optional[string] `json:"dueDate"`
}
