// Package db provides SQLite storage for notes and accounts.
package db

// schema is applied on every Open. Statements are idempotent.
const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		passwordHash TEXT NOT NULL,
		confirmed INTEGER NOT NULL DEFAULT 1,
		createdAt REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		createdAt REAL NOT NULL,
		updatedAt REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS notes_owner_updated ON notes(owner, updatedAt DESC);
`
