package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// SQLite serializes writers anyway; one connection also keeps ":memory:"
	// databases from splitting across pool connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS hospitals (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL
		);

		CREATE TABLE IF NOT EXISTS equipment_status (
			hospital_id TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			available INTEGER NOT NULL,
			total INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (hospital_id, resource_type),
			FOREIGN KEY (hospital_id) REFERENCES hospitals(id)
		);

		CREATE TABLE IF NOT EXISTS supply_status (
			hospital_id TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			normal INTEGER NOT NULL,
			critical_low INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (hospital_id, resource_type),
			FOREIGN KEY (hospital_id) REFERENCES hospitals(id)
		);

		CREATE TABLE IF NOT EXISTS suppliers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			resource_type TEXT NOT NULL,
			estimated_price TEXT NOT NULL,
			availability TEXT
		);

		CREATE TABLE IF NOT EXISTS analysis_runs (
			id TEXT PRIMARY KEY,
			generated_at INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL,
			hospitals INTEGER NOT NULL,
			critical INTEGER NOT NULL,
			warning INTEGER NOT NULL,
			transfers INTEGER NOT NULL,
			supplier_options INTEGER NOT NULL,
			unmitigated INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_suppliers_resource_type ON suppliers(resource_type);
		CREATE INDEX IF NOT EXISTS idx_analysis_runs_generated_at ON analysis_runs(generated_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
