package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
)

// Authenticator resolves an Authorization header to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*domain.User, error)
}

// Auth rejects requests without a valid bearer token. Every rejection gets
// the same 401 body; the cause is only logged.
func Auth(auth Authenticator, adapter *httpcontext.Adapter, log *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			stdCtx, cancel := adapter.Attach(ctx)
			user, err := auth.Authenticate(stdCtx, string(ctx.Request.Header.Peek("Authorization")))
			cancel()
			if err != nil {
				status := http.StatusUnauthorized
				message := domain.ErrUnauthorized.Message
				if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					status = http.StatusInternalServerError
					message = "internal server error"
					logger.WithRequestID(stdCtx, log).Error("authentication failed", zap.Error(err))
				} else {
					logger.WithRequestID(stdCtx, log).Debug("request rejected", zap.Error(err))
				}
				writeJSON(ctx, status, transport.NewError(message, nil))
				return
			}

			httpcontext.SetUser(ctx, user)
			next(ctx)
		}
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}
