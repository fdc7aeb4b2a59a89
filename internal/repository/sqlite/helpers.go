package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"fyora/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// Timestamp Helpers
// ============================================================================
//
// Timestamps are stored as TEXT. Values written by the application use
// RFC 3339 with nanoseconds in UTC; column defaults (CURRENT_TIMESTAMP)
// use SQLite's "YYYY-MM-DD HH:MM:SS" form, also UTC.

const sqliteTimestampLayout = "2006-01-02 15:04:05"

// formatTime renders t for storage
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads a stored timestamp in either supported layout
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(sqliteTimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return t, nil
}

// ============================================================================
// Row Scanners
// ============================================================================
//
// Column order must match between the *Columns constant and scanArgs().

// userRow holds all columns from a user query for scanning
type userRow struct {
	ID        int64
	Nickname  string
	Email     string
	CreatedAt string
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match userColumns order exactly: id, nickname, email, created_at
func (r *userRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,        // 1
		&r.Nickname,  // 2
		&r.Email,     // 3
		&r.CreatedAt, // 4
	}
}

// toDomain converts the scanned row to a domain.User
func (r *userRow) toDomain() (*domain.User, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user %d created_at: %w", r.ID, err)
	}
	return &domain.User{
		ID:        r.ID,
		Nickname:  r.Nickname,
		Email:     r.Email,
		CreatedAt: createdAt,
	}, nil
}

// userColumns returns the SELECT column list for user queries
const userColumns = `id, nickname, email, created_at`

// logRow holds all columns from a progress log query for scanning
type logRow struct {
	ID          int64
	UserID      int64
	Days        int
	Achievement sql.NullString
	LogDate     string
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match logColumns order exactly:
// id, user_id, days_without_gambling, achievement, log_date
func (r *logRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,          // 1
		&r.UserID,      // 2
		&r.Days,        // 3
		&r.Achievement, // 4
		&r.LogDate,     // 5
	}
}

// toDomain converts the scanned row to a domain.ProgressLog
func (r *logRow) toDomain() (*domain.ProgressLog, error) {
	logDate, err := parseTime(r.LogDate)
	if err != nil {
		return nil, fmt.Errorf("progress log %d log_date: %w", r.ID, err)
	}
	return &domain.ProgressLog{
		ID:                  r.ID,
		UserID:              r.UserID,
		DaysWithoutGambling: r.Days,
		Achievement:         nullToString(r.Achievement),
		LogDate:             logDate,
	}, nil
}

// logColumns returns the SELECT column list for progress log queries
const logColumns = `id, user_id, days_without_gambling, achievement, log_date`
