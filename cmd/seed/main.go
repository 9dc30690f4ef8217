// Command seed creates demo accounts and sample tasks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/auth"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/logger"
	accountUC "github.com/fastygo/taskboard/usecase/account"
	profileUC "github.com/fastygo/taskboard/usecase/profile"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type seedUser struct {
	signup accountUC.SignupInput
	bio    string
	tasks  []taskUC.CreateInput
}

func demoData(now time.Time) []seedUser {
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(taskUC.DateLayout)
	}
	return []seedUser{
		{
			signup: accountUC.SignupInput{Name: "Demo User", Email: "demo@example.com", Password: "demo123456"},
			bio:    "This is a demo account for testing purposes.",
			tasks: []taskUC.CreateInput{
				{Title: "Complete project documentation", Description: "Write comprehensive README and API documentation", Status: "in-progress", Priority: "high", DueDate: day(2)},
				{Title: "Review pull requests", Description: "Review and merge pending PRs from team members", Status: "pending", Priority: "medium", DueDate: day(1)},
				{Title: "Setup CI/CD pipeline", Description: "Configure automated testing and deployment", Status: "pending", Priority: "high", DueDate: day(5)},
				{Title: "Fix login bug", Description: "Investigate and fix the reported login issue on mobile", Status: "completed", Priority: "high", DueDate: day(-1)},
				{Title: "Update dependencies", Description: "Update all modules to their latest versions", Status: "pending", Priority: "low"},
			},
		},
		{
			signup: accountUC.SignupInput{Name: "Admin User", Email: "admin@example.com", Password: "admin123456"},
			bio:    "Admin account with sample tasks.",
		},
	}
}

func main() {
	reset := flag.Bool("reset", false, "delete the bolt database file before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	zapLogger, err := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	if *reset {
		if cfg.Storage.Driver != config.DriverBolt {
			zapLogger.Fatal("-reset is only supported for the bolt driver", zap.String("driver", cfg.Storage.Driver))
		}
		if err := os.Remove(cfg.Storage.BoltPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			zapLogger.Fatal("reset failed", zap.Error(err))
		}
		zapLogger.Info("cleared existing data", zap.String("path", cfg.Storage.BoltPath))
	}

	ctx := context.Background()
	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	defer func() {
		if err := manager.Shutdown(ctx); err != nil {
			zapLogger.Error("shutdown", zap.Error(err))
		}
	}()

	stores, err := services.OpenStores(ctx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage unavailable", zap.Error(err))
	}

	hasher, err := auth.NewPasswordHasher(cfg.Security.BcryptCost)
	if err != nil {
		zapLogger.Fatal("password hasher", zap.Error(err))
	}
	tokens, err := auth.NewTokenManager(auth.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL})
	if err != nil {
		zapLogger.Fatal("token manager", zap.Error(err))
	}

	accounts := accountUC.New(stores.Users, hasher, tokens, zapLogger)
	profiles := profileUC.New(stores.Users, zapLogger)
	tasks := taskUC.New(stores.Tasks, zapLogger)

	seeded := seedAll(ctx, accounts, profiles, tasks, demoData(time.Now()), zapLogger)
	printCredentials(os.Stdout, seeded)
}

// seedAll creates every user and returns the ones that were written.
func seedAll(ctx context.Context, accounts *accountUC.UseCase, profiles *profileUC.UseCase, tasks *taskUC.UseCase, users []seedUser, zapLogger *zap.Logger) []seedUser {
	var seeded []seedUser
	for _, u := range users {
		if err := seed(ctx, accounts, profiles, tasks, u); err != nil {
			zapLogger.Error("seed failed", zap.String("email", u.signup.Email), zap.Error(err))
			continue
		}
		zapLogger.Info("seeded account", zap.String("email", u.signup.Email), zap.Int("tasks", len(u.tasks)))
		seeded = append(seeded, u)
	}
	return seeded
}

// printCredentials writes the demo logins once, outside the structured log.
func printCredentials(w io.Writer, users []seedUser) {
	if len(users) == 0 {
		return
	}
	fmt.Fprintln(w, "Demo credentials:")
	for _, u := range users {
		fmt.Fprintf(w, "  %s / %s\n", u.signup.Email, u.signup.Password)
	}
}

func seed(ctx context.Context, accounts *accountUC.UseCase, profiles *profileUC.UseCase, tasks *taskUC.UseCase, u seedUser) error {
	session, err := accounts.Signup(ctx, u.signup)
	if domain.IsDomainError(err, domain.ErrCodeConflict) {
		return errors.New("account already exists, run with -reset to recreate it")
	}
	if err != nil {
		return err
	}
	if _, err := profiles.Update(ctx, session.User, profileUC.UpdateInput{Bio: domain.Some(u.bio)}); err != nil {
		return err
	}
	for _, in := range u.tasks {
		if _, err := tasks.Create(ctx, session.User, in); err != nil {
			return err
		}
	}
	return nil
}
