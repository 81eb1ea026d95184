package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the database selected by the environment and bootstraps
// the schema. DB_TYPE picks the driver: "sqlite" (default) or "postgres".
func Connect() (*sqlx.DB, error) {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	switch dbType {
	case "postgres":
		return Open("postgres", postgresDSN())
	case "sqlite":
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			dataDir := "data"
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %v", err)
			}
			path = filepath.Join(dataDir, "flashcards.db")
		}
		return Open("sqlite3", path)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

// Open connects the given driver and DSN and bootstraps the schema. Tests
// use it directly with an in-memory SQLite DSN.
func Open(driverName, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if driverName == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func postgresDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("POSTGRES_HOST", "localhost"),
		envOr("POSTGRES_PORT", "5432"),
		envOr("POSTGRES_USER", "postgres"),
		os.Getenv("POSTGRES_PASSWORD"),
		envOr("POSTGRES_DB", "flashcards"),
		envOr("POSTGRES_SSLMODE", "disable"),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// initializeSchema creates the tables if they don't exist. The DDL sticks
// to the portable subset of SQLite and PostgreSQL: TEXT primary keys
// (UUIDs are minted client-side), TIMESTAMP columns, no RETURNING.
func initializeSchema(db *sqlx.DB) error {
	statements := []struct {
		name string
		ddl  string
	}{
		{"word_databases", `
			CREATE TABLE IF NOT EXISTS word_databases (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				name TEXT NOT NULL,
				language TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)
		`},
		{"words", `
			CREATE TABLE IF NOT EXISTS words (
				id TEXT PRIMARY KEY,
				database_id TEXT NOT NULL,
				word TEXT NOT NULL,
				part_of_speech TEXT NOT NULL,
				lemma TEXT NOT NULL DEFAULT '',
				translations TEXT NOT NULL,
				sentence TEXT NOT NULL DEFAULT '',
				position INTEGER NOT NULL DEFAULT 0,
				first_instance BOOLEAN NOT NULL DEFAULT true,
				known BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				FOREIGN KEY (database_id) REFERENCES word_databases(id)
			)
		`},
		{"batches", `
			CREATE TABLE IF NOT EXISTS batches (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				database_id TEXT NOT NULL,
				batch_number INTEGER NOT NULL,
				total_words INTEGER NOT NULL DEFAULT 0,
				words_learned INTEGER NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT false,
				is_completed BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				UNIQUE (database_id, batch_number)
			)
		`},
		{"cards", `
			CREATE TABLE IF NOT EXISTS cards (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				database_id TEXT NOT NULL,
				signature TEXT NOT NULL,
				word TEXT NOT NULL,
				translations TEXT NOT NULL,
				part_of_speech TEXT NOT NULL,
				lemma TEXT NOT NULL DEFAULT '',
				example_sentence TEXT NOT NULL DEFAULT '',
				ordinal_position INTEGER NOT NULL DEFAULT 0,
				state TEXT NOT NULL DEFAULT 'new',
				ease_factor INTEGER NOT NULL DEFAULT 2500,
				interval_days INTEGER NOT NULL DEFAULT 0,
				repetitions INTEGER NOT NULL DEFAULT 0,
				lapses INTEGER NOT NULL DEFAULT 0,
				due_at TIMESTAMP NOT NULL,
				last_reviewed_at TIMESTAMP,
				batch_id TEXT,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				UNIQUE (owner_id, database_id, signature),
				FOREIGN KEY (batch_id) REFERENCES batches(id)
			)
		`},
		{"review_history", `
			CREATE TABLE IF NOT EXISTS review_history (
				id TEXT PRIMARY KEY,
				card_id TEXT NOT NULL,
				quality INTEGER NOT NULL,
				previous_interval INTEGER NOT NULL,
				new_interval INTEGER NOT NULL,
				previous_ease INTEGER NOT NULL,
				new_ease INTEGER NOT NULL,
				reviewed_at TIMESTAMP NOT NULL,
				FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE
			)
		`},
	}

	for _, s := range statements {
		if _, err := db.Exec(s.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %v", s.name, err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_cards_due ON cards (database_id, state, due_at)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_batch ON cards (batch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_words_database ON words (database_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_history_card ON review_history (card_id)`,
		`CREATE INDEX IF NOT EXISTS idx_history_reviewed ON review_history (reviewed_at)`,
	}
	for _, ddl := range indexes {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}

	return nil
}
