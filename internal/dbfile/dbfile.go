package dbfile

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"
)

// SharedDBFileName is the database file the engine writes when it runs in
// shared mode, independent of credentials and region.
const SharedDBFileName = "shared-local-instance.db"

// systemTables is the set of bookkeeping tables the engine creates in every
// database file. These must never be dropped; the engine fails to reopen a
// file that lost them.
//
// This map is effectively immutable: it is initialized at package level and
// never modified after program startup, so concurrent reads are safe without
// synchronization.
var systemTables = map[string]struct{}{
	"cf": {},
	"dm": {},
	"sm": {},
	"ss": {},
	"tr": {},
	"us": {},
}

// SystemTableNames returns the names of the engine's bookkeeping tables,
// sorted. The returned slice is a copy; callers may modify it without
// affecting internal state.
func SystemTableNames() []string {
	names := make([]string, 0, len(systemTables))
	for name := range systemTables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// isSystemTable reports whether name belongs to the engine's bookkeeping
// tables or to SQLite itself.
func isSystemTable(name string) bool {
	if _, ok := systemTables[name]; ok {
		return true
	}
	return strings.HasPrefix(name, "sqlite_")
}

// DatabaseFiles returns the engine database files under dataDir, sorted. A
// missing directory yields no files and no error.
func DatabaseFiles(dataDir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.db"))
	if err != nil {
		return nil, fmt.Errorf("glob database files in %s: %w", dataDir, err)
	}
	return files, nil
}

// TableNames returns the user tables persisted in the database file at
// dbPath, sorted.
func TableNames(ctx context.Context, dbPath string) ([]string, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close() //nolint:errcheck // read-only session, nothing to flush

	return findUserTables(ctx, db)
}

// DropUserTables removes every user table from the database file at dbPath
// together with its metadata row, leaving the engine's bookkeeping tables
// intact. All removals happen in a single transaction.
func DropUserTables(ctx context.Context, dbPath string, log *slog.Logger) error {
	db, err := openDatabase(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Warn("purge: close sqlite", "path", dbPath, "error", closeErr)
		}
	}()

	tables, err := findUserTables(ctx, db)
	if err != nil {
		return err
	}

	if len(tables) == 0 {
		log.Debug("purge: no user tables found, skipping", "path", dbPath)
		return nil
	}

	log.Debug("purge: dropping user tables", "path", dbPath, "tables", len(tables))

	if err := dropTables(ctx, db, tables); err != nil {
		return err
	}

	log.Debug("purge: cleanup complete", "path", dbPath, "tables_dropped", len(tables))
	return nil
}

// openDatabase opens an existing engine database file. The engine owns the
// journal mode of its files, so only a busy timeout is set in case a
// previous run left a hot WAL behind.
func openDatabase(dbPath string) (*sql.DB, error) {
	// The driver would create a missing file. A path without an engine
	// database is a caller mistake, so refuse instead.
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("stat database: %w", err)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(30000)", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Sessions here are short-lived; one connection, no pool.
	db.SetMaxOpenConns(1)
	return db, nil
}

// findUserTables returns the names of non-system tables in the database,
// sorted. System tables are filtered client-side via isSystemTable.
func findUserTables(ctx context.Context, db *sql.DB) ([]string, error) {
	const query = `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query user tables: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err() below catches read errors; Close error is redundant

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		if name != "" && !isSystemTable(name) {
			tables = append(tables, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table rows: %w", err)
	}

	return tables, nil
}

// dropTables removes the given tables and their rows in the dm metadata
// table in one transaction. DROP statements run one per table (SQLite allows
// no multi-table DROP); the metadata rows go in a single DELETE so the dm
// table is scanned once.
func dropTables(ctx context.Context, db *sql.DB, tables []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purge transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	args := make([]any, 0, len(tables))
	placeholders := make([]string, 0, len(tables))
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
		args = append(args, table)
		placeholders = append(placeholders, "?")
	}

	del := "DELETE FROM dm WHERE TableName IN (" + strings.Join(placeholders, ",") + ")"
	if _, err := tx.ExecContext(ctx, del, args...); err != nil {
		return fmt.Errorf("delete table metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit purge transaction: %w", err)
	}
	return nil
}

// quoteIdent quotes an identifier for direct inclusion in SQL. Table names
// come from sqlite_master and may contain any character, including the
// quote itself.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
