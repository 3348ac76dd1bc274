// Package migrate applies the goose SQL migrations that define the order schema.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/config"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
)

// Dir is the migrations directory relative to the repository root.
const Dir = "pkg/migrate/migrations"

var fileName = regexp.MustCompile(`^\d{14}_[a-z0-9_]+\.sql$`)

// State is one migration as the database sees it.
type State struct {
	Version   int64
	File      string
	Applied   bool
	AppliedAt time.Time
}

func open(db *sql.DB, dir string) (*goose.Provider, error) {
	if db == nil {
		return nil, errors.New("migrate: database required")
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("migrate: load %s: %w", dir, err)
	}
	return p, nil
}

// Up applies every pending migration and returns the files it ran.
func Up(ctx context.Context, db *sql.DB, dir string) ([]string, error) {
	p, err := open(db, dir)
	if err != nil {
		return nil, err
	}
	results, err := p.Up(ctx)
	applied := make([]string, 0, len(results))
	for _, r := range results {
		applied = append(applied, filepath.Base(r.Source.Path))
	}
	if err != nil {
		return applied, fmt.Errorf("migrate up: %w", err)
	}
	return applied, nil
}

// Down rolls back the newest applied migration.
func Down(ctx context.Context, db *sql.DB, dir string) (string, error) {
	p, err := open(db, dir)
	if err != nil {
		return "", err
	}
	r, err := p.Down(ctx)
	if err != nil {
		return "", fmt.Errorf("migrate down: %w", err)
	}
	return filepath.Base(r.Source.Path), nil
}

func Status(ctx context.Context, db *sql.DB, dir string) ([]State, error) {
	p, err := open(db, dir)
	if err != nil {
		return nil, err
	}
	rows, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate status: %w", err)
	}
	out := make([]State, 0, len(rows))
	for _, row := range rows {
		out = append(out, State{
			Version:   row.Source.Version,
			File:      filepath.Base(row.Source.Path),
			Applied:   row.State == goose.StateApplied,
			AppliedAt: row.AppliedAt,
		})
	}
	return out, nil
}

// Check lints dir without a database: timestamped names, unique versions,
// and both goose sections present in every file.
func Check(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	versions := map[string]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sql" {
			continue
		}
		if !fileName.MatchString(name) {
			return fmt.Errorf("migrate: %s is not named YYYYMMDDHHMMSS_name.sql", name)
		}
		version := name[:14]
		if other, dup := versions[version]; dup {
			return fmt.Errorf("migrate: %s and %s share version %s", other, name, version)
		}
		versions[version] = name

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		for _, section := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(body), section) {
				return fmt.Errorf("migrate: %s has no %q section", name, section)
			}
		}
	}
	return nil
}

// MaybeRunDev applies pending migrations at startup, only in dev with
// auto-migrate switched on.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	applied, err := Up(ctx, sqlDB, Dir)
	if err != nil {
		return err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"dir": Dir, "applied": applied}), "dev migrations applied")
	return nil
}
