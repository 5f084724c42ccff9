package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/VasiliiKletkin/yatube-main/internal/config"
	"github.com/VasiliiKletkin/yatube-main/internal/models"
	"github.com/VasiliiKletkin/yatube-main/internal/store"
	"github.com/VasiliiKletkin/yatube-main/internal/utils"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database and migrates the schema.
func Open(cfg config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.DBDriver != "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	utils.Logger.Info("database connection established", zap.String("driver", cfg.DBDriver))

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	utils.Logger.Info("database migration completed")
	return nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		if dsn == "" {
			dsn = "yatube.db"
		}
		// every pooled connection needs foreign keys switched on
		if !strings.Contains(dsn, "_foreign_keys") && !strings.Contains(dsn, "_fk") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_foreign_keys=on"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "warn", "warning":
		return logger.Warn
	case "error", "fatal", "panic":
		return logger.Error
	default:
		return logger.Silent
	}
}

type groupSeed struct {
	Title       string  `yaml:"title"`
	Slug        string  `yaml:"slug"`
	Description *string `yaml:"description"`
}

// SeedGroups creates the groups listed in a YAML file. Slugs that already
// exist are skipped, so seeding is safe to repeat on every start.
func SeedGroups(ctx context.Context, s *store.Store, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read groups file: %w", err)
	}

	var seeds []groupSeed
	if err := yaml.Unmarshal(raw, &seeds); err != nil {
		return 0, fmt.Errorf("parse groups file: %w", err)
	}

	created := 0
	for _, seed := range seeds {
		_, err := s.CreateGroup(ctx, store.GroupInput{
			Title:       seed.Title,
			Slug:        seed.Slug,
			Description: seed.Description,
		})
		if err == nil {
			created++
			continue
		}
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			if _, dup := verr.Fields["slug"]; dup && len(verr.Fields) == 1 {
				continue
			}
			utils.Logger.Warn("skipping invalid group seed", zap.String("slug", seed.Slug), zap.Error(err))
			continue
		}
		return created, err
	}
	utils.Logger.Info("groups seeded", zap.Int("created", created), zap.Int("listed", len(seeds)))
	return created, nil
}
