// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store persists personas, responses and assessments over
// database/sql. Queries use $N placeholders so the same SQL runs on
// SQLite and PostgreSQL.
package store
