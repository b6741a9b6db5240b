// Package export copies a word list and its cognate judgments into a SQLite
// database for ad-hoc querying.
package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/lexstatcldf/internal/cldf"
	"codeberg.org/snonux/lexstatcldf/internal/cognate"
)

// WriteSQLite writes forms and cognates into a fresh database at path. An
// existing file is replaced only once the new database is complete.
func WriteSQLite(path string, forms []cldf.Form, cognates []cognate.Row) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".lexstatcldf-export-*.sqlite")
	if err != nil {
		return fmt.Errorf("failed to create temp database: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := createDatabase(tmpPath, forms, cognates); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move database into place: %w", err)
	}
	return nil
}

func createDatabase(dbPath string, forms []cldf.Form, cognates []cognate.Row) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertForms(tx, forms); err != nil {
		return fmt.Errorf("failed to insert forms: %w", err)
	}
	if err := insertCognates(tx, cognates); err != nil {
		return fmt.Errorf("failed to insert cognates: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}
	return nil
}

// createTables mirrors the column names of the CLDF components
func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE FormTable (
			cldf_id TEXT PRIMARY KEY NOT NULL,
			cldf_languageReference TEXT,
			cldf_parameterReference TEXT,
			cldf_segments TEXT
		)`,
		`CREATE TABLE CognateTable (
			cldf_id TEXT PRIMARY KEY NOT NULL,
			cldf_formReference TEXT NOT NULL,
			cldf_cognatesetReference TEXT,
			cldf_alignment TEXT,
			cldf_source TEXT,
			FOREIGN KEY (cldf_formReference) REFERENCES FormTable (cldf_id)
		)`,
		`CREATE INDEX ix_forms_language ON FormTable (cldf_languageReference)`,
		`CREATE INDEX ix_forms_parameter ON FormTable (cldf_parameterReference)`,
		`CREATE INDEX ix_cognates_form ON CognateTable (cldf_formReference)`,
		`CREATE INDEX ix_cognates_set ON CognateTable (cldf_cognatesetReference)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

func insertForms(tx *sql.Tx, forms []cldf.Form) error {
	stmt, err := tx.Prepare(`INSERT INTO FormTable VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range forms {
		if _, err := stmt.Exec(f.ID, f.LanguageID, f.ParameterID, strings.Join(f.Segments, " ")); err != nil {
			return fmt.Errorf("form %s: %w", f.ID, err)
		}
	}
	return nil
}

func insertCognates(tx *sql.Tx, rows []cognate.Row) error {
	stmt, err := tx.Prepare(`INSERT INTO CognateTable VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		fields := row.Fields()
		if _, err := stmt.Exec(fields[0], fields[1], fields[2], fields[3], fields[4]); err != nil {
			return fmt.Errorf("cognate %s: %w", row.ID, err)
		}
	}
	return nil
}
