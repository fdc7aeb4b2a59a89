package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fyora/internal/domain"
	"fyora/internal/repository"

	_ "modernc.org/sqlite"
)

var _ repository.Repository = (*Repository)(nil)

// Repository is the storage engine for users and progress logs.
//
// Every exported method runs in its own session: a dedicated connection
// with foreign keys enabled and a transaction that is committed before the
// method returns. Nothing is cached between calls.
type Repository struct {
	db *sql.DB
}

// New opens (creating if needed) the SQLite database at dbPath and ensures the schema exists.
func New(dbPath string) (*Repository, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; one connection also keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return repo, nil
}

// ensureSchema creates tables and indexes on first use. It never alters existing tables.
func (r *Repository) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nickname TEXT NOT NULL CHECK (length(nickname) BETWEEN 1 AND 120),
		email TEXT NOT NULL CHECK (length(email) BETWEEN 1 AND 200),
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS ux_users_nickname ON users(nickname);
	CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS progress_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		days_without_gambling INTEGER NOT NULL CHECK (days_without_gambling >= 0),
		achievement TEXT CHECK (achievement IS NULL OR length(achievement) <= 300),
		log_date TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_progress_logs_user ON progress_logs(user_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// session runs fn in a transaction on its own connection and commits it.
func (r *Repository) session(ctx context.Context, fn func(tx *sql.Tx) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer conn.Close()

	// foreign_keys cannot be changed inside a transaction, so set it first.
	if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ============================================================================
// Users
// ============================================================================

// CreateUser inserts the user and its attached logs, filling in generated ids
// and storage defaults (created_at, log_date) on the passed structs.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	return r.session(ctx, func(tx *sql.Tx) error {
		var (
			id        int64
			createdAt string
			err       error
		)
		if user.CreatedAt.IsZero() {
			err = tx.QueryRowContext(ctx, `
				INSERT INTO users (nickname, email) VALUES (?, ?)
				RETURNING id, created_at
			`, user.Nickname, user.Email).Scan(&id, &createdAt)
		} else {
			err = tx.QueryRowContext(ctx, `
				INSERT INTO users (nickname, email, created_at) VALUES (?, ?, ?)
				RETURNING id, created_at
			`, user.Nickname, user.Email, formatTime(user.CreatedAt)).Scan(&id, &createdAt)
		}
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}

		ts, err := parseTime(createdAt)
		if err != nil {
			return fmt.Errorf("failed to parse created_at: %w", err)
		}
		user.ID = id
		user.CreatedAt = ts

		for _, l := range user.ProgressLogs {
			l.UserID = id
			l.User = user
			if err := insertLog(ctx, tx, l); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListUsers returns every user with its logs loaded, ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User

	err := r.session(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
		if err != nil {
			return fmt.Errorf("failed to query users: %w", err)
		}
		defer rows.Close()

		byID := make(map[int64]*domain.User)
		for rows.Next() {
			var row userRow
			if err := rows.Scan(row.scanArgs()...); err != nil {
				return fmt.Errorf("failed to scan user: %w", err)
			}
			user, err := row.toDomain()
			if err != nil {
				return err
			}
			users = append(users, user)
			byID[user.ID] = user
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating users: %w", err)
		}

		logs, err := queryLogs(ctx, tx, `SELECT `+logColumns+` FROM progress_logs ORDER BY user_id, id`)
		if err != nil {
			return err
		}
		for _, l := range logs {
			if owner := byID[l.UserID]; owner != nil {
				l.User = owner
				owner.ProgressLogs = append(owner.ProgressLogs, l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}

// GetUser retrieves a user with its logs. A missing user yields nil, nil.
func (r *Repository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User

	err := r.session(ctx, func(tx *sql.Tx) error {
		var row userRow
		err := tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id).Scan(row.scanArgs()...)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query user: %w", err)
		}

		u, err := row.toDomain()
		if err != nil {
			return err
		}

		logs, err := queryLogs(ctx, tx, `SELECT `+logColumns+` FROM progress_logs WHERE user_id = ? ORDER BY id`, id)
		if err != nil {
			return err
		}
		for _, l := range logs {
			l.User = u
		}
		u.ProgressLogs = logs
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// NicknameTaken reports whether a user other than excludeID holds nickname, ignoring case.
// Pass 0 to check against every user.
func (r *Repository) NicknameTaken(ctx context.Context, nickname string, excludeID int64) (bool, error) {
	return r.exists(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE lower(nickname) = lower(?) AND id <> ?)
	`, strings.TrimSpace(nickname), excludeID)
}

// EmailTaken reports whether a user other than excludeID holds email, ignoring case.
// Pass 0 to check against every user.
func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower(?) AND id <> ?)
	`, strings.TrimSpace(email), excludeID)
}

func (r *Repository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	err := r.session(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return fmt.Errorf("failed to check existence: %w", err)
		}
		found = n != 0
		return nil
	})
	return found, err
}

// UpdateUser writes the user's nickname and email. It reports false when no row has the user's id.
func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) (bool, error) {
	var updated bool
	err := r.session(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE users SET nickname = ?, email = ? WHERE id = ?
		`, user.Nickname, user.Email, user.ID)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		updated = n > 0
		return nil
	})
	return updated, err
}

// DeleteUser removes a user; its progress logs are removed by CASCADE.
// It reports false when the user did not exist.
func (r *Repository) DeleteUser(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.session(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

// DeleteAllUsers clears the store and returns how many users were removed.
func (r *Repository) DeleteAllUsers(ctx context.Context) (int64, error) {
	var removed int64
	err := r.session(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM users`)
		if err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}
		removed, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		return nil
	})
	return removed, err
}

// CountUsers returns the number of stored users.
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

// CountProgressLogs returns the number of stored progress logs.
func (r *Repository) CountProgressLogs(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM progress_logs`)
}

func (r *Repository) count(ctx context.Context, query string) (int, error) {
	var n int
	err := r.session(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return fmt.Errorf("failed to count rows: %w", err)
		}
		return nil
	})
	return n, err
}

// ============================================================================
// Progress logs
// ============================================================================

// AddProgressLog inserts the log for log.UserID. When that user does not exist
// nothing is written and false is returned.
func (r *Repository) AddProgressLog(ctx context.Context, log *domain.ProgressLog) (bool, error) {
	var added bool
	err := r.session(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)
		`, log.UserID).Scan(&n); err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if n == 0 {
			return nil
		}

		if err := insertLog(ctx, tx, log); err != nil {
			return err
		}
		added = true
		return nil
	})
	return added, err
}

// ListProgressLogs returns a user's logs ordered by id.
func (r *Repository) ListProgressLogs(ctx context.Context, userID int64) ([]*domain.ProgressLog, error) {
	var logs []*domain.ProgressLog
	err := r.session(ctx, func(tx *sql.Tx) error {
		var err error
		logs, err = queryLogs(ctx, tx, `SELECT `+logColumns+` FROM progress_logs WHERE user_id = ? ORDER BY id`, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func insertLog(ctx context.Context, tx *sql.Tx, log *domain.ProgressLog) error {
	var (
		id      int64
		logDate string
		err     error
	)
	achievement := stringToNull(log.Achievement)
	if log.LogDate.IsZero() {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO progress_logs (user_id, days_without_gambling, achievement)
			VALUES (?, ?, ?)
			RETURNING id, log_date
		`, log.UserID, log.DaysWithoutGambling, achievement).Scan(&id, &logDate)
	} else {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO progress_logs (user_id, days_without_gambling, achievement, log_date)
			VALUES (?, ?, ?, ?)
			RETURNING id, log_date
		`, log.UserID, log.DaysWithoutGambling, achievement, formatTime(log.LogDate)).Scan(&id, &logDate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert progress log: %w", err)
	}

	ts, err := parseTime(logDate)
	if err != nil {
		return fmt.Errorf("failed to parse log_date: %w", err)
	}
	log.ID = id
	log.LogDate = ts
	return nil
}

func queryLogs(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]*domain.ProgressLog, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.ProgressLog
	for rows.Next() {
		var row logRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan progress log: %w", err)
		}
		l, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress logs: %w", err)
	}
	return logs, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
