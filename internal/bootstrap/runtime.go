// Package bootstrap wires process-wide runtime dependencies for the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bitacora/internal/cache"
	"bitacora/internal/config"
	"bitacora/internal/database"
	"bitacora/internal/middleware"
	"bitacora/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to DB and Redis and ensures the development admin.
// The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	if _, err := EnsureDevAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}
	return db, cache.GetClient(), nil
}

// EnsureDevAdmin creates or promotes the configured admin account. It is a
// no-op outside development or when DEV_BOOTSTRAP_ADMIN is off, and returns
// nil then.
func EnsureDevAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) (*models.User, error) {
	if cfg == nil || db == nil {
		return nil, nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapAdmin {
		return nil, nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.DevAdminEmail))
	if email == "" {
		return nil, errors.New("DEV_ADMIN_EMAIL must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}
	name := strings.TrimSpace(cfg.DevAdminName)
	if name == "" {
		name = "Admin"
	}

	var admin models.User
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("email = ?", email).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			admin = models.User{ID: uuid.NewString(), Name: name, Email: email, Role: models.RoleAdmin}
			return tx.Create(&admin).Error
		case findErr != nil:
			return findErr
		case admin.Role != models.RoleAdmin:
			admin.Role = models.RoleAdmin
			return tx.Model(&admin).Update("role", models.RoleAdmin).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.Info("development admin bootstrap ensured",
		slog.String("user_id", admin.ID),
		slog.String("email", email),
	)
	return &admin, nil
}
