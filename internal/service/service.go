package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"fyora/internal/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_store.go -package=mocks UserStore

// UserStore is the storage engine contract the user service depends on.
// It is implemented by sqlite.Repository.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	NicknameTaken(ctx context.Context, nickname string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	UpdateUser(ctx context.Context, user *domain.User) (bool, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
	DeleteAllUsers(ctx context.Context) (int64, error)
	AddProgressLog(ctx context.Context, log *domain.ProgressLog) (bool, error)
	ListProgressLogs(ctx context.Context, userID int64) ([]*domain.ProgressLog, error)
	CountUsers(ctx context.Context) (int, error)
	CountProgressLogs(ctx context.Context) (int, error)
}

// UserService is the single entry point for reading and writing users and
// progress logs. It enforces case-insensitive nickname and email uniqueness
// before delegating to the store, so callers get ErrDuplicateNickname or
// ErrDuplicateEmail instead of a raw constraint failure.
//
// Uniqueness is checked and then written in separate store calls. This is
// only correct with a single caller at a time; concurrent writers would need
// an atomic insert with constraint-error translation instead.
type UserService struct {
	store UserStore
	now   func() time.Time
}

// NewUserService creates a new user service
func NewUserService(store UserStore) *UserService {
	return &UserService{
		store: store,
		now:   time.Now,
	}
}

// Stats holds aggregate counts for summary reports
type Stats struct {
	Users        int `json:"users"`
	ProgressLogs int `json:"progress_logs"`
}

// AddUser validates and inserts a new user together with any attached logs.
// Nickname is checked before email. CreatedAt and log dates default to now.
func (s *UserService) AddUser(ctx context.Context, user *domain.User) error {
	user.Normalize()
	if err := user.Validate(); err != nil {
		return err
	}

	if err := s.checkUnique(ctx, user.Nickname, user.Email, 0); err != nil {
		return err
	}

	now := s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	for _, l := range user.ProgressLogs {
		if l.LogDate.IsZero() {
			l.LogDate = now
		}
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	slog.Info("user created", "user_id", user.ID, "nickname", user.Nickname, "logs", len(user.ProgressLogs))
	return nil
}

// GetAllUsers returns every user with logs loaded, in id order.
func (s *UserService) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// GetUserByID returns the user with logs loaded. found is false when no user has id.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*domain.User, bool, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("get user %d: %w", id, err)
	}
	if user == nil {
		return nil, false, nil
	}
	return user, true, nil
}

// UpdateUser replaces the nickname and, when newEmail is not blank, the email.
// A blank newEmail leaves the stored email untouched. Missing users yield OutcomeNotFound.
func (s *UserService) UpdateUser(ctx context.Context, id int64, newNickname, newEmail string) (domain.Outcome, error) {
	current, err := s.store.GetUser(ctx, id)
	if err != nil {
		return domain.OutcomeNotFound, fmt.Errorf("get user %d: %w", id, err)
	}
	if current == nil {
		return domain.OutcomeNotFound, nil
	}

	nickname := strings.TrimSpace(newNickname)
	email := strings.TrimSpace(newEmail)

	updated := &domain.User{ID: id, Nickname: nickname, Email: current.Email}
	if email != "" {
		updated.Email = email
	}
	if err := updated.Validate(); err != nil {
		return domain.OutcomeNotFound, err
	}

	taken, err := s.store.NicknameTaken(ctx, nickname, id)
	if err != nil {
		return domain.OutcomeNotFound, fmt.Errorf("check nickname: %w", err)
	}
	if taken {
		return domain.OutcomeNotFound, domain.ErrDuplicateNickname
	}

	if email != "" {
		taken, err := s.store.EmailTaken(ctx, email, id)
		if err != nil {
			return domain.OutcomeNotFound, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return domain.OutcomeNotFound, domain.ErrDuplicateEmail
		}
	}

	ok, err := s.store.UpdateUser(ctx, updated)
	if err != nil {
		return domain.OutcomeNotFound, fmt.Errorf("update user %d: %w", id, err)
	}
	if !ok {
		return domain.OutcomeNotFound, nil
	}

	slog.Info("user updated", "user_id", id, "nickname", updated.Nickname, "email_changed", email != "")
	return domain.OutcomeApplied, nil
}

// DeleteUser removes a user and, through the store's cascade, all of its logs.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (domain.Outcome, error) {
	ok, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return domain.OutcomeNotFound, fmt.Errorf("delete user %d: %w", id, err)
	}
	if !ok {
		return domain.OutcomeNotFound, nil
	}

	slog.Info("user deleted", "user_id", id)
	return domain.OutcomeApplied, nil
}

// AddProgressLog appends a log to an existing user. When the user does not
// exist nothing is written and OutcomeNotFound is returned without an error.
func (s *UserService) AddProgressLog(ctx context.Context, userID int64, log *domain.ProgressLog) (domain.Outcome, error) {
	if err := log.Validate(); err != nil {
		return domain.OutcomeNotFound, err
	}

	log.UserID = userID
	if log.LogDate.IsZero() {
		log.LogDate = s.now()
	}

	ok, err := s.store.AddProgressLog(ctx, log)
	if err != nil {
		return domain.OutcomeNotFound, fmt.Errorf("add progress log for user %d: %w", userID, err)
	}
	if !ok {
		slog.Warn("progress log dropped, user not found", "user_id", userID)
		return domain.OutcomeNotFound, nil
	}

	slog.Info("progress log added", "user_id", userID, "log_id", log.ID, "days", log.DaysWithoutGambling)
	return domain.OutcomeApplied, nil
}

// ProgressLogs returns a user's logs, most recent first.
func (s *UserService) ProgressLogs(ctx context.Context, userID int64) ([]*domain.ProgressLog, domain.Outcome, error) {
	logs, err := s.store.ListProgressLogs(ctx, userID)
	if err != nil {
		return nil, domain.OutcomeNotFound, fmt.Errorf("list progress logs for user %d: %w", userID, err)
	}

	if len(logs) == 0 {
		user, err := s.store.GetUser(ctx, userID)
		if err != nil {
			return nil, domain.OutcomeNotFound, fmt.Errorf("get user %d: %w", userID, err)
		}
		if user == nil {
			return nil, domain.OutcomeNotFound, nil
		}
		return []*domain.ProgressLog{}, domain.OutcomeApplied, nil
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].LogDate.After(logs[j].LogDate)
	})
	return logs, domain.OutcomeApplied, nil
}

// Stats returns the number of stored users and progress logs.
func (s *UserService) Stats(ctx context.Context) (Stats, error) {
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}
	logs, err := s.store.CountProgressLogs(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count progress logs: %w", err)
	}
	return Stats{Users: users, ProgressLogs: logs}, nil
}

// Reset deletes every user (and by cascade every log) and returns how many users were removed.
func (s *UserService) Reset(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAllUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset store: %w", err)
	}
	slog.Warn("store cleared", "users_removed", n)
	return n, nil
}

// checkUnique returns the first uniqueness conflict for nickname, then email.
func (s *UserService) checkUnique(ctx context.Context, nickname, email string, excludeID int64) error {
	taken, err := s.store.NicknameTaken(ctx, nickname, excludeID)
	if err != nil {
		return fmt.Errorf("check nickname: %w", err)
	}
	if taken {
		return domain.ErrDuplicateNickname
	}

	taken, err = s.store.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return domain.ErrDuplicateEmail
	}
	return nil
}
