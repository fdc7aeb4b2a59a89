// Package repository defines the data access interface for Fyora.
//
// This package provides the repository abstraction layer for persisting
// and retrieving users and progress logs. The actual implementation is in
// the sqlite subpackage.
//
// # Repository Interface
//
// The Repository interface defines every storage operation: user CRUD,
// case-insensitive identity lookups, progress log inserts and listings,
// counts, and a full reset. Missing rows are reported as nil or false, never
// as errors.
//
// # SQLite Implementation
//
// The sqlite implementation stores everything in a single file. It handles:
//
// - One committed transaction per call, with no state carried between calls
// - Length and range checks in the schema
// - Foreign key constraints and cascade deletes
// - Nested inserts of a user together with its logs
//
// # Schema
//
// Tables and indexes are created on first open if absent. Existing tables
// are never altered.
package repository
