// Package migrations embeds and applies the database schema.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/keyturn/keyturn/internal/shared/infrastructure/database"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationFS embed.FS

// Run executes all migrations for the connection's driver, in order.
// Statements use CREATE TABLE IF NOT EXISTS so reruns are idempotent.
func Run(ctx context.Context, conn database.Connection) error {
	dir := conn.Driver().String()

	entries, err := migrationFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory %q: %w", dir, err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, file := range upFiles {
		migration, err := migrationFS.ReadFile(dir + "/" + file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		for _, stmt := range splitStatements(string(migration)) {
			if _, err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migration %s failed: %w", file, err)
			}
		}
	}

	return nil
}

// splitStatements splits a migration file into individual statements.
// The pgx simple protocol and the sqlite driver both want one statement
// per Exec call.
func splitStatements(sql string) []string {
	var stmts []string
	for _, stmt := range strings.Split(sql, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
