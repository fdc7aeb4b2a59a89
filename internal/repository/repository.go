package repository

import (
	"context"

	"fyora/internal/domain"
)

// Repository defines the interface for user and progress log data access
type Repository interface {
	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) (bool, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)

	// Identity lookups, case-insensitive, ignoring excludeID
	NicknameTaken(ctx context.Context, nickname string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)

	// Progress logs
	AddProgressLog(ctx context.Context, log *domain.ProgressLog) (bool, error)
	ListProgressLogs(ctx context.Context, userID int64) ([]*domain.ProgressLog, error)

	// Aggregates and bulk operations
	CountUsers(ctx context.Context) (int, error)
	CountProgressLogs(ctx context.Context) (int, error)
	DeleteAllUsers(ctx context.Context) (int64, error)

	// Close releases resources
	Close() error
}
