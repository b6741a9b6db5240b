package export

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/snonux/lexstatcldf/internal/cldf"
	"codeberg.org/snonux/lexstatcldf/internal/cognate"
)

func testForms() []cldf.Form {
	return []cldf.Form{
		{ID: "A", LanguageID: "deu", ParameterID: "hand", Segments: []string{"h", "a", "n", "t"}},
		{ID: "B", LanguageID: "eng", ParameterID: "hand"},
		{ID: "C", LanguageID: "nld", ParameterID: "hand", Segments: []string{"h", "a", "n", "t"}},
	}
}

func testCognates() []cognate.Row {
	return []cognate.Row{
		{ID: "1", FormID: "A", CognatesetID: "1", Alignment: []string{"h", "a", "n", "t"}, Source: []string{"LexStat"}},
		{ID: "2", FormID: "C", CognatesetID: "1", Alignment: []string{"h", "a", "n", "t"}, Source: []string{"LexStat"}},
	}
}

func TestWriteSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "out", "wordlist.sqlite")

	if err := WriteSQLite(dbPath, testForms(), testCognates()); err != nil {
		t.Fatalf("WriteSQLite() error = %v", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var forms, cognates int
	if err := db.QueryRow("SELECT COUNT(*) FROM FormTable").Scan(&forms); err != nil {
		t.Fatalf("Failed to count forms: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM CognateTable").Scan(&cognates); err != nil {
		t.Fatalf("Failed to count cognates: %v", err)
	}
	if forms != 3 || cognates != 2 {
		t.Errorf("Got %d forms and %d cognates, want 3 and 2", forms, cognates)
	}

	var language, alignment string
	err = db.QueryRow(`SELECT f.cldf_languageReference, c.cldf_alignment
		FROM CognateTable c JOIN FormTable f ON f.cldf_id = c.cldf_formReference
		WHERE c.cldf_id = '2'`).Scan(&language, &alignment)
	if err != nil {
		t.Fatalf("Join query failed: %v", err)
	}
	if language != "nld" || alignment != "h a n t" {
		t.Errorf("Got (%q, %q), want (nld, h a n t)", language, alignment)
	}
}

func TestWriteSQLiteReplaces(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "wordlist.sqlite")

	if err := WriteSQLite(dbPath, testForms(), testCognates()); err != nil {
		t.Fatalf("First WriteSQLite() error = %v", err)
	}
	if err := WriteSQLite(dbPath, testForms()[:1], testCognates()[:1]); err != nil {
		t.Fatalf("Second WriteSQLite() error = %v", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var forms int
	if err := db.QueryRow("SELECT COUNT(*) FROM FormTable").Scan(&forms); err != nil {
		t.Fatalf("Failed to count forms: %v", err)
	}
	if forms != 1 {
		t.Errorf("Expected 1 form after replace, got %d", forms)
	}
}

func TestWriteSQLiteDuplicateFormFails(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "wordlist.sqlite")

	forms := append(testForms(), testForms()[0])
	if err := WriteSQLite(dbPath, forms, nil); err == nil {
		t.Fatal("Expected error for duplicate form ID")
	}

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Error("Database should not exist after a failed export")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected no leftover files, got %d", len(entries))
	}
}
