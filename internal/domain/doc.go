// Package domain defines the core domain types for the Fyora admin tool.
//
// # Core Types
//
// User is an administered account identified by a nickname and an email,
// both unique ignoring case. A User owns an ordered list of progress logs.
//
// ProgressLog records a count of days without gambling and an optional
// achievement at a point in time. A log always belongs to exactly one user
// and is removed with it.
//
// # Outcomes and Errors
//
// Writes addressed to a user id that does not exist are not failures; they
// report OutcomeNotFound. Uniqueness conflicts are ErrDuplicateNickname and
// ErrDuplicateEmail. Field problems are *ValidationError values, which match
// ErrInvalid with errors.Is.
package domain
