package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/lexstatcldf/internal/cldf"
)

// SampleForms is the smallest word list exercising skipped forms and shared
// cognates: B has no segments and C repeats A.
func SampleForms() []cldf.Form {
	return []cldf.Form{
		{ID: "A", LanguageID: "deu", ParameterID: "hand", Segments: []string{"h", "a", "n", "t"}},
		{ID: "B", LanguageID: "eng", ParameterID: "hand"},
		{ID: "C", LanguageID: "nld", ParameterID: "hand", Segments: []string{"h", "a", "n", "t"}},
	}
}

const metadataTemplate = `{
    "@context": "http://www.w3.org/ns/csvw",
    "dc:conformsTo": "http://cldf.clld.org/v1.0/terms.rdf#Wordlist",
    "dc:title": "Test word list",
    "tables": [
        {
            "url": "forms.csv",
            "dc:conformsTo": "http://cldf.clld.org/v1.0/terms.rdf#FormTable",
            "tableSchema": {
                "columns": [
                    {"name": "ID", "propertyUrl": "http://cldf.clld.org/v1.0/terms.rdf#id"},
                    {"name": "Language_ID", "propertyUrl": "http://cldf.clld.org/v1.0/terms.rdf#languageReference"},
                    {"name": "Parameter_ID", "propertyUrl": "http://cldf.clld.org/v1.0/terms.rdf#parameterReference"},
                    {"name": "Form", "propertyUrl": "http://cldf.clld.org/v1.0/terms.rdf#form"},
                    {"name": "Segments", "propertyUrl": "http://cldf.clld.org/v1.0/terms.rdf#segments", "separator": " "}
                ],
                "primaryKey": ["ID"]
            }
        }
    ]
}
`

// CreateWordlist writes a dataset with a metadata file and a FormTable into
// a fresh directory and returns the metadata path.
func CreateWordlist(t *testing.T, forms []cldf.Form) string {
	t.Helper()

	dir := t.TempDir()
	metadataPath := filepath.Join(dir, cldf.DefaultMetadataFile)
	CreateTestFile(t, metadataPath, []byte(metadataTemplate))
	writeForms(t, filepath.Join(dir, "forms.csv"), forms)

	return metadataPath
}

// CreateFormsOnly writes a metadata-free dataset and returns the forms path
func CreateFormsOnly(t *testing.T, forms []cldf.Form) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), cldf.DefaultFormsFile)
	writeForms(t, path, forms)

	return path
}

func writeForms(t *testing.T, path string, forms []cldf.Form) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create forms file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	records := [][]string{{"ID", "Language_ID", "Parameter_ID", "Form", "Segments"}}
	for _, f := range forms {
		records = append(records, []string{f.ID, f.LanguageID, f.ParameterID, strings.Join(f.Segments, ""), strings.Join(f.Segments, " ")})
	}
	if err := writer.WriteAll(records); err != nil {
		t.Fatalf("Failed to write forms file: %v", err)
	}
}

// LoadDataset loads a dataset and fails the test on error
func LoadDataset(t *testing.T, path string) *cldf.Dataset {
	t.Helper()

	ds, err := cldf.Load(path)
	if err != nil {
		t.Fatalf("Failed to load dataset %s: %v", path, err)
	}
	return ds
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// Snapshot returns the contents of every regular file below dir keyed by
// relative path, for checking that a run left a dataset untouched.
func Snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()

	files := map[string]string{}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[rel] = string(content)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to snapshot %s: %v", dir, err)
	}
	return files
}

// StagedFiles lists the staged flat tables left in dir
func StagedFiles(t *testing.T, dir string) []string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, "lexstatcldf-*.tsv"))
	if err != nil {
		t.Fatalf("Failed to glob staging dir: %v", err)
	}
	return matches
}
