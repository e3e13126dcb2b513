package database

import (
	"database/sql"
	"fmt"
	"log"
)

var requiredTables = []string{
	"treatment_evaluations",
}

// CreateTables creates all necessary tables for evaluation history
func CreateTables(db *sql.DB) error {
	log.Println("Creating database tables...")

	// One row per engine run; stages hold the full audit trail as JSONB
	evaluationsTable := `
	CREATE TABLE IF NOT EXISTS treatment_evaluations (
		id UUID PRIMARY KEY,
		user_id VARCHAR(100) NOT NULL DEFAULT 'anonymous',
		session_id VARCHAR(100) NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		turbidity DOUBLE PRECISION NOT NULL CHECK (turbidity >= 0),
		ph DOUBLE PRECISION NOT NULL CHECK (ph >= 0 AND ph <= 14),
		cod DOUBLE PRECISION NOT NULL CHECK (cod >= 0),
		nitrogen DOUBLE PRECISION NOT NULL CHECK (nitrogen >= 0),
		phosphorus DOUBLE PRECISION NOT NULL CHECK (phosphorus >= 0),
		tss DOUBLE PRECISION CHECK (tss >= 0),
		bod DOUBLE PRECISION CHECK (bod >= 0),
		tds DOUBLE PRECISION CHECK (tds >= 0),
		reuse_type VARCHAR(50) NOT NULL DEFAULT '',
		overall_status VARCHAR(20) NOT NULL
			CHECK (overall_status IN ('safe', 'needs-treatment', 'critical')),
		total_stages_required SMALLINT NOT NULL CHECK (total_stages_required BETWEEN 0 AND 3),
		estimated_treatment_time DOUBLE PRECISION NOT NULL,
		estimated_efficiency DOUBLE PRECISION NOT NULL CHECK (estimated_efficiency BETWEEN 0 AND 95),
		stages JSONB NOT NULL
	);`

	if _, err := db.Exec(evaluationsTable); err != nil {
		return fmt.Errorf("failed to create treatment_evaluations table: %w", err)
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON treatment_evaluations(created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_evaluations_user_id ON treatment_evaluations(user_id);",
		"CREATE INDEX IF NOT EXISTS idx_evaluations_status ON treatment_evaluations(overall_status);",
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
		}
	}

	log.Println("✅ Database tables created successfully")
	return nil
}

// DropTables drops all tables (useful for testing)
func DropTables(db *sql.DB) error {
	log.Println("Dropping database tables...")

	for _, table := range requiredTables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", table)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	log.Println("✅ Database tables dropped successfully")
	return nil
}

// CheckTablesExist checks if all required tables exist
func CheckTablesExist(db *sql.DB) error {
	for _, table := range requiredTables {
		var exists bool
		query := `SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		);`

		err := db.QueryRow(query, table).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}

		if !exists {
			return fmt.Errorf("table %s does not exist", table)
		}
	}

	log.Println("✅ All required tables exist")
	return nil
}

// RunMigrations creates missing tables
func RunMigrations(db *sql.DB) error {
	if err := CheckTablesExist(db); err == nil {
		return nil
	}
	return CreateTables(db)
}
