// Package service implements business logic for the Fyora admin tool.
//
// This package sits between the CLI and the storage engine, implementing
// uniqueness rules, validation, and file import/export.
//
// # Services
//
// UserService is the record repository: it adds, lists, updates and deletes
// users and appends progress logs. Nickname and email are unique ignoring
// case; violations are reported as domain.ErrDuplicateNickname and
// domain.ErrDuplicateEmail. Missing users are reported as
// domain.OutcomeNotFound rather than as errors.
//
// ReconcileService exports users to JSON or YAML, writes summary reports, and
// imports users from files, merging them so that no existing user is
// duplicated.
//
// # Design Principles
//
// - Services own business logic and validation
// - Repository pattern for data access (UserStore)
// - Every call is independent; there is no cross-call transaction
// - Context-aware for cancellation and timeouts
package service
