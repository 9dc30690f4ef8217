package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/auth"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	accountUC "github.com/fastygo/taskboard/usecase/account"
	profileUC "github.com/fastygo/taskboard/usecase/profile"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger = zapLogger.With(zap.String("app", cfg.AppName), zap.String("env", cfg.Environment))

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	stores, err := services.OpenStores(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage unavailable", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	probes := []monitor.Probe{stores.Probe}

	var rateCounter repository.RateCounter
	if cfg.Redis.URL != "" {
		redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Warn("redis unavailable, rate limits are per instance", zap.Error(err))
		} else {
			manager.Register("redis", func(context.Context) error {
				return redisInfra.Close(redisClient, zapLogger)
			})
			rateCounter = redisRepo.NewRateCounter(redisClient, cfg.AppName+":ratelimit:")
			probes = append(probes, monitor.RedisProbe(redisClient))
		}
	}

	mon := monitor.New(cfg.Monitor.Interval, zapLogger, probes...)
	if err := mon.Start(); err != nil {
		zapLogger.Fatal("monitor failed to start", zap.Error(err))
	}
	manager.Register("monitor", mon.Stop)

	hasher, err := auth.NewPasswordHasher(cfg.Security.BcryptCost)
	if err != nil {
		zapLogger.Fatal("password hasher", zap.Error(err))
	}
	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL,
	})
	if err != nil {
		zapLogger.Fatal("token manager", zap.Error(err))
	}
	gateway := auth.NewGateway(tokens, stores.Users, zapLogger)

	accountUseCase := accountUC.New(stores.Users, hasher, tokens, zapLogger)
	profileUseCase := profileUC.New(stores.Users, zapLogger)
	taskUseCase := taskUC.New(stores.Tasks, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(accountUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	mws := router.Middlewares{
		Auth: middleware.Auth(gateway, ctxAdapter, zapLogger),
	}
	if cfg.RateLimit.Enabled {
		authLimiter := middleware.NewRateLimiter(rateCounter, middleware.RateLimitConfig{
			Requests:   cfg.RateLimit.AuthRequests,
			Window:     cfg.RateLimit.Window,
			TrustProxy: cfg.RateLimit.TrustProxy,
		}, zapLogger)
		apiLimiter := middleware.NewRateLimiter(rateCounter, middleware.RateLimitConfig{
			Requests:   cfg.RateLimit.Requests,
			Window:     cfg.RateLimit.Window,
			TrustProxy: cfg.RateLimit.TrustProxy,
		}, zapLogger)
		mws.AuthRateLimit = authLimiter.Limit("auth")
		mws.APIRateLimit = apiLimiter.Limit("api")
	}

	r := router.New(handlers, mws, zapLogger)

	server := &fasthttp.Server{
		Handler: middleware.Chain(r.Handler,
			middleware.AccessLog(zapLogger),
			middleware.CORS(cfg.Security.CORSOrigins),
		),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxConnsPerIP:      cfg.HTTP.MaxConn,
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
		Name:               cfg.AppName,
	}

	manager.Go("http_server", func() error {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", stores.Driver),
			zap.Bool("shared_rate_limit", rateCounter != nil),
		)
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	if err := manager.Wait(appCtx); err != nil {
		zapLogger.Error("server stopped unexpectedly", zap.Error(err))
	}

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
