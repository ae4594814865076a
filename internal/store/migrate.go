package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MigrationFiles lists the .sql files in dir in lexical order.
func MigrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Migrate applies every migration in dir and returns the files it ran.
// Migrations are written to be re-runnable, so nothing is tracked.
func Migrate(ctx context.Context, db *pgxpool.Pool, dir string) ([]string, error) {
	files, err := MigrationFiles(dir)
	if err != nil {
		return nil, err
	}
	for i, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			return files[:i], fmt.Errorf("read %s: %w", filepath.Base(f), err)
		}
		if _, err := db.Exec(ctx, string(sql)); err != nil {
			return files[:i], fmt.Errorf("apply %s: %w", filepath.Base(f), err)
		}
	}
	return files, nil
}
