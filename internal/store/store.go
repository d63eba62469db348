package store

import (
	"database/sql"

	_ "github.com/glebarez/go-sqlite"
)

// Store is the SQLite-backed persistence layer for all user-owned
// entities. Consistency is last-write-wins per row; callers needing
// stronger guarantees don't exist in this codebase.
type Store struct {
	DB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS shopping_lists (
			user_id TEXT PRIMARY KEY,
			items TEXT NOT NULL DEFAULT '[]',
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS inventory (
			user_id TEXT,
			item_name TEXT,
			quantity REAL DEFAULT 0,
			unit TEXT DEFAULT '',
			category TEXT DEFAULT '',
			PRIMARY KEY (user_id, item_name)
		);`,
		`CREATE TABLE IF NOT EXISTS leftovers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT,
			meal_name TEXT,
			servings REAL DEFAULT 0,
			notes TEXT DEFAULT '',
			date_created DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS preferences (
			user_id TEXT PRIMARY KEY,
			data TEXT NOT NULL DEFAULT '{}'
		);`,
		`CREATE TABLE IF NOT EXISTS search_cache (
			user_id TEXT,
			query TEXT,
			country TEXT,
			results TEXT,
			cached_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, query, country)
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, err
		}
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}
