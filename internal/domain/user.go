package domain

import (
	"strings"
	"time"
)

// Field limits shared by validation and the storage schema.
const (
	NicknameMaxLen    = 120
	EmailMaxLen       = 200
	AchievementMaxLen = 300
)

// User is an administered account identified by nickname and email.
// A User owns its progress logs; they are deleted together with it.
type User struct {
	ID           int64          `json:"id" yaml:"id"`
	Nickname     string         `json:"nickname" yaml:"nickname" validate:"required,max=120"`
	Email        string         `json:"email" yaml:"email" validate:"required,max=200,email"`
	CreatedAt    time.Time      `json:"createdAt" yaml:"created_at"`
	ProgressLogs []*ProgressLog `json:"progressLogs" yaml:"progress_logs" validate:"-"`
}

// NewUser creates a user with trimmed identity fields and no id.
func NewUser(nickname, email string) *User {
	u := &User{Nickname: nickname, Email: email}
	u.Normalize()
	return u
}

// Normalize trims surrounding whitespace from the identity fields.
func (u *User) Normalize() {
	u.Nickname = strings.TrimSpace(u.Nickname)
	u.Email = strings.TrimSpace(u.Email)
}

// SameNickname reports whether nickname matches the user's nickname ignoring case.
func (u *User) SameNickname(nickname string) bool {
	return strings.EqualFold(strings.TrimSpace(u.Nickname), strings.TrimSpace(nickname))
}

// SameEmail reports whether email matches the user's email ignoring case.
func (u *User) SameEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(u.Email), strings.TrimSpace(email))
}

// Conflicts reports whether other shares either identity field with u.
func (u *User) Conflicts(other *User) bool {
	if other == nil {
		return false
	}
	return u.SameNickname(other.Nickname) || u.SameEmail(other.Email)
}

// AddLog appends a log to the user and points it back at its owner.
func (u *User) AddLog(log *ProgressLog) {
	log.UserID = u.ID
	log.User = u
	u.ProgressLogs = append(u.ProgressLogs, log)
}

// LogCount returns the number of progress logs held by the user.
func (u *User) LogCount() int {
	return len(u.ProgressLogs)
}

// LatestLog returns the log with the most recent LogDate, or nil.
func (u *User) LatestLog() *ProgressLog {
	var latest *ProgressLog
	for _, l := range u.ProgressLogs {
		if latest == nil || l.LogDate.After(latest.LogDate) {
			latest = l
		}
	}
	return latest
}

// CountLogs sums the progress logs across users.
func CountLogs(users []*User) int {
	total := 0
	for _, u := range users {
		total += u.LogCount()
	}
	return total
}
