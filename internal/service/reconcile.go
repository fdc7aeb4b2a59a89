package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fyora/internal/codec"
	"fyora/internal/config"
	"fyora/internal/domain"

	"github.com/google/uuid"
)

// ImportResult contains the outcome of merging imported users
type ImportResult struct {
	RunID    string      `json:"run_id"`
	Read     int         `json:"read"`
	Inserted int         `json:"inserted"`
	Skipped  int         `json:"skipped"`
	Rejected []Rejection `json:"rejected,omitempty"`
}

// Rejection records an imported user that AddUser refused
type Rejection struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Reason   string `json:"reason"`
}

// ReconcileService moves users between the store and files: data exports,
// imports merged without duplicates, and summary reports.
type ReconcileService struct {
	users   *UserService
	paths   *config.Paths
	summary *codec.SummaryWriter
	now     func() time.Time
}

// NewReconcileService creates a new reconcile service
func NewReconcileService(users *UserService, paths *config.Paths) *ReconcileService {
	return &ReconcileService{
		users:   users,
		paths:   paths,
		summary: codec.NewSummaryWriter(),
		now:     time.Now,
	}
}

// ExportUsers writes every stored user with its logs to name, resolved under
// the export directory. The codec follows the extension. Existing files are
// overwritten. Returns the path written.
func (r *ReconcileService) ExportUsers(ctx context.Context, name string) (string, error) {
	users, err := r.users.GetAllUsers(ctx)
	if err != nil {
		return "", err
	}

	path := r.paths.ExportPath(name)
	exporter := codec.ForPath(path)

	var buf bytes.Buffer
	if err := exporter.Export(users, &buf); err != nil {
		return "", fmt.Errorf("export users: %w", err)
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return "", err
	}

	slog.Info("users exported", "path", path, "format", exporter.Format(), "users", len(users), "logs", domain.CountLogs(users))
	return path, nil
}

// ImportUsers reads users from the first existing import candidate for name.
// A missing file, an empty file and an unreadable or unparsable file all
// yield an empty slice; the latter two are logged as warnings. The returned
// path is empty when no candidate existed.
func (r *ReconcileService) ImportUsers(name string) ([]*domain.User, string) {
	path, ok := r.paths.ResolveImport(name)
	if !ok {
		slog.Info("no import file found", "name", name, "candidates", r.paths.ImportCandidates(name))
		return []*domain.User{}, ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("import file unreadable, nothing imported", "path", path, "error", err)
		return []*domain.User{}, path
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*domain.User{}, path
	}

	importer := codec.ForPath(path)
	users, err := importer.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Warn("import file could not be parsed, nothing imported", "path", path, "format", importer.Format(), "error", err)
		return []*domain.User{}, path
	}

	slog.Debug("import file read", "path", path, "users", len(users))
	return users, path
}

// ExportSummary writes the plain-text summary report to name, resolved under
// the summary directory, overwriting any existing file.
func (r *ReconcileService) ExportSummary(name string, userCount, logCount int) (string, error) {
	path := r.paths.SummaryPath(name)

	var buf bytes.Buffer
	err := r.summary.Write(codec.Summary{
		GeneratedAt:  r.now(),
		Users:        userCount,
		ProgressLogs: logCount,
	}, &buf)
	if err != nil {
		return "", err
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return "", err
	}

	slog.Info("summary exported", "path", path, "users", userCount, "logs", logCount)
	return path, nil
}

// MergeUsers inserts the imported users that do not collide with a stored
// user, or with one inserted earlier in the same run, by nickname or email
// (case-insensitive). Colliding users are skipped, never merged. Each insert
// gets fresh ids; nested logs are inserted with their user. Validation and
// uniqueness errors from AddUser reject that user only; any other error stops
// the merge and is returned with the partial result.
func (r *ReconcileService) MergeUsers(ctx context.Context, imported []*domain.User) (*ImportResult, error) {
	result := &ImportResult{
		RunID: uuid.NewString(),
		Read:  len(imported),
	}
	logger := slog.Default().With("import_id", result.RunID)

	known, err := r.users.GetAllUsers(ctx)
	if err != nil {
		return result, err
	}

	for _, user := range imported {
		if user == nil {
			result.Skipped++
			continue
		}
		if matchesAny(known, user) {
			result.Skipped++
			logger.Debug("skipping existing user", "nickname", user.Nickname, "email", user.Email)
			continue
		}

		detach(user)
		if err := r.users.AddUser(ctx, user); err != nil {
			if domain.IsConflict(err) || errors.Is(err, domain.ErrInvalid) {
				result.Skipped++
				result.Rejected = append(result.Rejected, Rejection{
					Nickname: user.Nickname,
					Email:    user.Email,
					Reason:   err.Error(),
				})
				logger.Warn("imported user rejected", "nickname", user.Nickname, "error", err)
				continue
			}
			return result, fmt.Errorf("import %q: %w", user.Nickname, err)
		}

		result.Inserted++
		known = append(known, user)
	}

	logger.Info("import merged", "read", result.Read, "inserted", result.Inserted, "skipped", result.Skipped)
	return result, nil
}

// matchesAny reports whether user shares a nickname or email with any of users.
func matchesAny(users []*domain.User, user *domain.User) bool {
	for _, u := range users {
		if u.Conflicts(user) {
			return true
		}
	}
	return false
}

// detach clears stored ids so the user and its logs are inserted as new rows.
func detach(user *domain.User) {
	user.ID = 0
	for _, l := range user.ProgressLogs {
		l.ID = 0
		l.UserID = 0
		l.User = user
	}
}

// writeFile creates the parent directory and replaces path with data.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
