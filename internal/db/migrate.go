package db

import (
	"database/sql"
	"fmt"
)

// migrations holds the full schema: the input workbook tables the ingest
// reader consumes, and the result tables the report builder writes. All
// statements are idempotent so Migrate can run on both fresh and existing
// databases.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS persons (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_commissioner INTEGER NOT NULL DEFAULT 0,
		is_senior_commissioner INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		leader_id TEXT NOT NULL REFERENCES persons(id),
		deadline TEXT NOT NULL,
		base_required INTEGER NOT NULL DEFAULT 0,
		add_required INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		team_id TEXT NOT NULL REFERENCES teams(id),
		person_id TEXT NOT NULL REFERENCES persons(id),
		PRIMARY KEY (team_id, person_id)
	)`,
	`CREATE TABLE IF NOT EXISTS availability (
		person_id TEXT NOT NULL REFERENCES persons(id),
		day TEXT NOT NULL,
		slot INTEGER NOT NULL,
		code INTEGER NOT NULL,
		PRIMARY KEY (person_id, day, slot)
	)`,
	`CREATE TABLE IF NOT EXISTS fixed_meetings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		team_id TEXT NOT NULL REFERENCES teams(id),
		day TEXT NOT NULL,
		start_slot INTEGER NOT NULL,
		leader_id TEXT NOT NULL REFERENCES persons(id),
		commissioner1 TEXT NOT NULL,
		commissioner2 TEXT NOT NULL,
		commissioner3 TEXT NOT NULL,
		commissioner4 TEXT NOT NULL,
		meeting_no INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS add_requests (
		team_id TEXT NOT NULL REFERENCES teams(id),
		add_count INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS result_meetings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		team_id TEXT NOT NULL,
		team_name TEXT NOT NULL,
		day TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		start_slot INTEGER NOT NULL,
		leader_id TEXT NOT NULL,
		leader_name TEXT NOT NULL,
		commissioner1 TEXT NOT NULL,
		commissioner2 TEXT NOT NULL,
		commissioner3 TEXT NOT NULL,
		commissioner4 TEXT NOT NULL,
		senior_count INTEGER NOT NULL,
		meeting_no INTEGER NOT NULL,
		handover_person TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS result_team_summary (
		team_name TEXT PRIMARY KEY,
		required_total INTEGER NOT NULL,
		done_total INTEGER NOT NULL,
		normal_plus_one_ok INTEGER NOT NULL,
		finish_buffer_ok INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS result_person_summary (
		person_name TEXT PRIMARY KEY,
		total_attend INTEGER NOT NULL,
		leader_count INTEGER NOT NULL,
		commissioner_count INTEGER NOT NULL
	)`,
}

// Migrate applies the schema to db.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
