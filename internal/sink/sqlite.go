package sink

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/logging"
	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

// Kinds stored in named_results.
const (
	kindFail   = "fail"
	kindXPass  = "xpass"
	kindBroken = "broken"
	kindFixed  = "fixed"
)

// Count columns of the suites table, indexed by testparser.Outcome.
var countColumns = [testparser.NumOutcomes]string{
	"expected_passes",
	"unexpected_failures",
	"unexpected_successes",
	"expected_failures",
	"unresolved_testcases",
	"untested_testcases",
	"unsupported_tests",
}

// SQLite archives every run in a SQLite database and reads the most
// recent one back as the previous run.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite creates or opens the archive at path.
//
// The database is configured with:
//   - WAL mode
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db, logger: logging.OrDiscard(logger)}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema is idempotent.
func applySchema(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// Name returns the sink name.
func (s *SQLite) Name() string { return "sqlite" }

// LoadPrevious reads the unexpected failures and passes of the most
// recently stored run. An empty archive yields an empty PreviousRun.
func (s *SQLite) LoadPrevious(ctx context.Context) (regression.PreviousRun, error) {
	var run int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM runs ORDER BY id DESC LIMIT 1").Scan(&run)
	if errors.Is(err, sql.ErrNoRows) {
		return regression.PreviousRun{}, nil
	}
	if err != nil {
		return nil, dderrors.ArchiveUnavailable("sqlite", err)
	}

	prev, err := s.loadRun(ctx, run)
	if err != nil {
		return nil, dderrors.ArchiveUnavailable("sqlite", err)
	}
	return prev, nil
}

func (s *SQLite) loadRun(ctx context.Context, run int64) (regression.PreviousRun, error) {
	prev := regression.PreviousRun{}

	keys, err := s.db.QueryContext(ctx, "SELECT key FROM suites WHERE run = ?", run)
	if err != nil {
		return nil, fmt.Errorf("query suites: %w", err)
	}
	defer keys.Close()
	for keys.Next() {
		var key string
		if err := keys.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan suite: %w", err)
		}
		prev[key] = regression.PreviousSuite{UnexpectedFail: []string{}, UnexpectedPass: []string{}}
	}
	if err := keys.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT key, kind, name FROM named_results WHERE run = ? AND kind IN (?, ?) ORDER BY key, kind, seq",
		run, kindFail, kindXPass)
	if err != nil {
		return nil, fmt.Errorf("query named results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, kind, name string
		if err := rows.Scan(&key, &kind, &name); err != nil {
			return nil, fmt.Errorf("scan named result: %w", err)
		}
		suite := prev[key]
		if kind == kindFail {
			suite.UnexpectedFail = append(suite.UnexpectedFail, name)
		} else {
			suite.UnexpectedPass = append(suite.UnexpectedPass, name)
		}
		prev[key] = suite
	}
	return prev, rows.Err()
}

// Store writes the run, its suites and its environment in one transaction.
func (s *SQLite) Store(ctx context.Context, pub Publication) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dderrors.Wrap(err, "begin archive transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO runs (run_id, description, started_at) VALUES (?, ?, ?)",
		pub.RunID, pub.Description, pub.Time.Unix())
	if err != nil {
		return dderrors.Wrap(err, "insert run")
	}
	run, err := res.LastInsertId()
	if err != nil {
		return dderrors.Wrap(err, "insert run")
	}

	insertSuite := fmt.Sprintf("INSERT INTO suites (run, key, %s) VALUES (?, ?%s)",
		strings.Join(countColumns[:], ", "), strings.Repeat(", ?", len(countColumns)))
	for _, key := range pub.Results.Keys() {
		e, _ := pub.Results.Get(key)
		args := []any{run, key}
		for _, n := range e.Suite.Counts {
			args = append(args, n)
		}
		if _, err := tx.ExecContext(ctx, insertSuite, args...); err != nil {
			return dderrors.Wrap(err, "insert suite "+key)
		}

		named := []struct {
			kind  string
			names []string
		}{
			{kindFail, e.Suite.UnexpectedFail},
			{kindXPass, e.Suite.UnexpectedPass},
			{kindBroken, e.Diff.NewlyBroken},
			{kindFixed, e.Diff.NewlyFixed},
		}
		for _, n := range named {
			for seq, name := range n.names {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO named_results (run, key, kind, seq, name) VALUES (?, ?, ?, ?, ?)",
					run, key, n.kind, seq, name); err != nil {
					return dderrors.Wrap(err, "insert named result")
				}
			}
		}
	}

	for name, value := range pub.Env {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO environment (run, name, value) VALUES (?, ?, ?)", run, name, value); err != nil {
			return dderrors.Wrap(err, "insert environment")
		}
	}

	if err := tx.Commit(); err != nil {
		return dderrors.Wrap(err, "commit archive transaction")
	}
	s.logger.Debug("archived run", "run", pub.RunID, "suites", pub.Results.Len())
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
