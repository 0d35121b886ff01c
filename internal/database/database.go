package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection at the given path.
// Pass ":memory:" for an in-memory database (tests).
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// The pool must not open a second connection: each in-memory
		// connection is its own empty database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	log.Println("✅ SQLite database connected")

	return &DB{db}, nil
}

// Initialize creates all required tables and seeds reference data.
func (db *DB) Initialize() error {
	log.Println("🔍 Checking database schema...")

	if err := db.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if err := db.seedReferenceData(); err != nil {
		return fmt.Errorf("failed to seed reference data: %w", err)
	}

	log.Println("✅ Database initialized successfully")
	return nil
}

func (db *DB) createTables() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS department (
			department_id   INTEGER PRIMARY KEY AUTOINCREMENT,
			department_name TEXT NOT NULL UNIQUE,
			location        TEXT NOT NULL DEFAULT '',
			office_phone    TEXT NOT NULL DEFAULT '',
			office_email    TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS category (
			category_id      INTEGER PRIMARY KEY AUTOINCREMENT,
			category_name    TEXT NOT NULL UNIQUE,
			sla_target_hours INTEGER NOT NULL DEFAULT 72,
			risk_level       TEXT NOT NULL DEFAULT 'Low'
		)`,
		// The citizen table deliberately carries credential columns.
		// Nothing outside the safe projection layer may ever select them
		// for AI-bound output.
		`CREATE TABLE IF NOT EXISTS citizen (
			citizen_id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name               TEXT NOT NULL,
			email              TEXT NOT NULL UNIQUE,
			password_hash      TEXT NOT NULL DEFAULT '',
			verification_token TEXT NOT NULL DEFAULT '',
			is_active          INTEGER NOT NULL DEFAULT 1,
			created_at         TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS complaint (
			complaint_id   INTEGER PRIMARY KEY AUTOINCREMENT,
			reference_code TEXT NOT NULL UNIQUE,
			title          TEXT NOT NULL,
			description    TEXT NOT NULL,
			status         TEXT NOT NULL DEFAULT 'Pending',
			priority       TEXT NOT NULL DEFAULT 'Medium',
			location       TEXT NOT NULL DEFAULT '',
			is_anonymous   INTEGER NOT NULL DEFAULT 0,
			submitted_at   TEXT NOT NULL,
			citizen_id     INTEGER REFERENCES citizen(citizen_id),
			category_id    INTEGER REFERENCES category(category_id),
			department_id  INTEGER REFERENCES department(department_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_complaint_submitted ON complaint(submitted_at)`,
		`CREATE INDEX IF NOT EXISTS idx_complaint_status ON complaint(status)`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// seedReferenceData inserts default departments and categories on first run.
func (db *DB) seedReferenceData() error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM department").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		log.Println("📦 Seeding departments...")
		departments := []struct {
			name, location, phone, email string
		}{
			{"Public Works", "Block A, Municipal Complex", "06-931-1001", "works@segamat.gov.my"},
			{"Sanitation", "Block B, Municipal Complex", "06-931-1002", "sanitation@segamat.gov.my"},
			{"Parks and Recreation", "Block C, Municipal Complex", "06-931-1003", "parks@segamat.gov.my"},
			{"Public Safety", "Block D, Municipal Complex", "06-931-1004", "safety@segamat.gov.my"},
		}
		for _, d := range departments {
			if _, err := db.Exec(
				"INSERT INTO department (department_name, location, office_phone, office_email) VALUES (?, ?, ?, ?)",
				d.name, d.location, d.phone, d.email,
			); err != nil {
				return err
			}
		}
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM category").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		log.Println("📦 Seeding categories...")
		categories := []struct {
			name string
			sla  int
			risk string
		}{
			{"Infrastructure", 72, "High"},
			{"Noise", 48, "Low"},
			{"Waste Management", 24, "Medium"},
			{"Street Lighting", 48, "Medium"},
			{"Other", 96, "Low"},
		}
		for _, c := range categories {
			if _, err := db.Exec(
				"INSERT INTO category (category_name, sla_target_hours, risk_level) VALUES (?, ?, ?)",
				c.name, c.sla, c.risk,
			); err != nil {
				return err
			}
		}
	}

	return nil
}
