package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const sampleSchema = `
	CREATE TABLE patients (
		patient_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER,
		gender TEXT
	);

	CREATE TABLE visits (
		visit_id INTEGER PRIMARY KEY,
		patient_id INTEGER NOT NULL REFERENCES patients(patient_id),
		date TEXT NOT NULL,
		reason TEXT
	);

	CREATE TABLE medications (
		med_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT
	);

	CREATE TABLE prescriptions (
		id INTEGER PRIMARY KEY,
		visit_id INTEGER NOT NULL REFERENCES visits(visit_id),
		med_id INTEGER NOT NULL REFERENCES medications(med_id),
		dosage TEXT
	);
`

const sampleData = `
	INSERT INTO patients (patient_id, name, age, gender) VALUES
		(1, 'Alice Moreno', 54, 'F'),
		(2, 'Brian Okafor', 61, 'M'),
		(3, 'Chen Wei', 38, 'M'),
		(4, 'Dana Fischer', 45, 'F');

	INSERT INTO visits (visit_id, patient_id, date, reason) VALUES
		(1, 1, '2024-01-12', 'Hypertension follow-up'),
		(2, 2, '2024-02-03', 'Chest pain'),
		(3, 2, '2024-03-15', 'Hypertension'),
		(4, 3, '2024-03-20', 'Seasonal allergies'),
		(5, 4, '2024-04-02', 'Type 2 diabetes review'),
		(6, 1, '2024-05-28', 'Routine checkup');

	INSERT INTO medications (med_id, name, category) VALUES
		(1, 'Lisinopril', 'Antihypertensive'),
		(2, 'Aspirin', 'Antiplatelet'),
		(3, 'Cetirizine', 'Antihistamine'),
		(4, 'Metformin', 'Antidiabetic');

	INSERT INTO prescriptions (id, visit_id, med_id, dosage) VALUES
		(1, 1, 1, '10 mg daily'),
		(2, 2, 2, '81 mg daily'),
		(3, 3, 1, '20 mg daily'),
		(4, 4, 3, '10 mg as needed'),
		(5, 5, 4, '500 mg twice daily');
`

// CreateSampleDatabase writes a small healthcare database to path. The file
// must not already exist.
func CreateSampleDatabase(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing file %s", path)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sampleSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(sampleData); err != nil {
		return fmt.Errorf("failed to insert sample rows: %w", err)
	}
	return nil
}
