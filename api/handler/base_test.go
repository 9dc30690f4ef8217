package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidPayload, http.StatusBadRequest},
		{domain.InvalidFields(domain.FieldError{Field: "title", Message: "Title is required"}), http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrTaskNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", domain.ErrTaskNotFound), http.StatusNotFound},
		{domain.ErrEmailTaken, http.StatusConflict},
		{domain.ErrTooManyRequests, http.StatusTooManyRequests},
		{domain.WrapError(domain.ErrCodeInternal, "boom", errors.New("disk")), http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := mapError(tt.err); got != tt.want {
			t.Errorf("mapError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	h := newBaseHandler(nil, nil)
	ctx := &fasthttp.RequestCtx{}

	h.respondError(context.Background(), ctx, domain.WrapError(domain.ErrCodeInternal, "failed to load task", errors.New("pq: secret table")))

	var env transport.Envelope
	if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ctx.Response.StatusCode() != http.StatusInternalServerError || env.Message != "internal server error" {
		t.Errorf("status %d envelope %+v", ctx.Response.StatusCode(), env)
	}
}

func TestRespondErrorIncludesFields(t *testing.T) {
	h := newBaseHandler(nil, nil)
	ctx := &fasthttp.RequestCtx{}

	h.respondError(context.Background(), ctx, domain.InvalidFields(domain.FieldError{Field: "email", Message: "please provide a valid email"}))

	var env transport.Envelope
	if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || len(env.Errors) != 1 || env.Errors[0].Field != "email" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	h := newBaseHandler(nil, nil)
	tests := []struct {
		body string
		ok   bool
		msg  string
	}{
		{`{"email":"a@x.com","password":"p"}`, true, ""},
		{`{"email":"a@x.com","admin":true}`, false, `unknown field "admin"`},
		{`{"email":1}`, false, "invalid value for email"},
		{``, false, "invalid payload"},
		{`{"email":"a@x.com"}{"email":"b@x.com"}`, false, "invalid payload"},
	}
	for _, tt := range tests {
		ctx := &fasthttp.RequestCtx{}
		ctx.Request.SetBodyString(tt.body)
		var req transport.LoginRequest
		if got := h.decode(ctx, &req); got != tt.ok {
			t.Errorf("decode(%q) = %v, want %v", tt.body, got, tt.ok)
			continue
		}
		if tt.ok {
			continue
		}
		var env transport.Envelope
		if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if env.Message != tt.msg {
			t.Errorf("decode(%q) message = %q, want %q", tt.body, env.Message, tt.msg)
		}
	}
}

func TestDecodeTaskPayloadToleratesOnlyOwnerFields(t *testing.T) {
	h := newBaseHandler(nil, nil)
	tests := []struct {
		body string
		ok   bool
	}{
		{`{"title":"Buy milk","userId":"someone-else"}`, true},
		{`{"title":"Buy milk","user":{"id":"x"},"owner":"x"}`, true},
		{`{"title":"Buy milk","id":"abc"}`, false},
		{`{"title":"Buy milk","createdAt":"2024-01-01T00:00:00Z"}`, false},
	}
	for _, tt := range tests {
		ctx := &fasthttp.RequestCtx{}
		ctx.Request.SetBodyString(tt.body)
		var req transport.TaskUpdateRequest
		if got := h.decode(ctx, &req); got != tt.ok {
			t.Errorf("decode(%s) = %v, want %v", tt.body, got, tt.ok)
		}
	}
}
