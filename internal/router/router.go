package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/api/transport"
)

// Middleware decorates a handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

// Middlewares are applied per route group. Nil entries are skipped.
type Middlewares struct {
	Auth          Middleware
	AuthRateLimit Middleware
	APIRateLimit  Middleware
}

func New(handlers Handlers, mw Middlewares, logger *zap.Logger) *router.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := router.New()
	r.RedirectTrailingSlash = false

	r.GET("/api/health", handlers.Health.Check)

	v1 := r.Group("/api/v1")

	// Public auth routes
	public := chain(mw.AuthRateLimit)
	v1.POST("/auth/signup", public(handlers.Auth.Signup))
	v1.POST("/auth/login", public(handlers.Auth.Login))

	// Protected routes
	protected := chain(mw.APIRateLimit, mw.Auth)
	v1.GET("/me", protected(handlers.Profile.GetProfile))
	v1.PUT("/me", protected(handlers.Profile.UpdateProfile))

	v1.GET("/tasks", protected(handlers.Task.GetTasks))
	v1.POST("/tasks", protected(handlers.Task.CreateTask))
	v1.GET("/tasks/{id}", protected(handlers.Task.GetTask))
	v1.PUT("/tasks/{id}", protected(handlers.Task.UpdateTask))
	v1.DELETE("/tasks/{id}", protected(handlers.Task.DeleteTask))

	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		writeJSON(ctx, http.StatusNotFound, transport.NewError("route not found", nil))
	}
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		writeJSON(ctx, http.StatusMethodNotAllowed, transport.NewError("method not allowed", nil))
	}
	r.PanicHandler = func(ctx *fasthttp.RequestCtx, rcv interface{}) {
		logger.Error("panic while serving request",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.String("panic", fmt.Sprint(rcv)),
			zap.Stack("stack"),
		)
		writeJSON(ctx, http.StatusInternalServerError, transport.NewError("internal server error", nil))
	}

	return r
}

func chain(mws ...Middleware) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		for i := len(mws) - 1; i >= 0; i-- {
			if mws[i] != nil {
				h = mws[i](h)
			}
		}
		return h
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}
