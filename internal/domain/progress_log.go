package domain

import (
	"strings"
	"time"
)

// ProgressLog records how many days a user has gone without gambling
// and an optional achievement reached at that point.
type ProgressLog struct {
	ID                  int64     `json:"id" yaml:"id"`
	UserID              int64     `json:"userId" yaml:"user_id"`
	DaysWithoutGambling int       `json:"daysWithoutGambling" yaml:"days_without_gambling" validate:"gte=0"`
	Achievement         string    `json:"achievement,omitempty" yaml:"achievement,omitempty" validate:"max=300"`
	LogDate             time.Time `json:"logDate" yaml:"log_date"`

	// User is the owning user; set when the log is loaded or decoded with its owner.
	User *User `json:"-" yaml:"-" validate:"-"`
}

// NewProgressLog creates an unsaved log with a trimmed achievement.
func NewProgressLog(days int, achievement string) *ProgressLog {
	return &ProgressLog{
		DaysWithoutGambling: days,
		Achievement:         strings.TrimSpace(achievement),
	}
}
