package cognate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/snonux/lexstatcldf/internal/archive"
	"codeberg.org/snonux/lexstatcldf/internal/cldf"
	"codeberg.org/snonux/lexstatcldf/internal/engine"
)

// SourceLexStat is the source recorded on every generated judgment
const SourceLexStat = "LexStat"

const (
	alignmentSeparator = " "
	sourceSeparator    = ";"
)

// ErrTableExists is returned when the dataset already holds a CognateTable
// and overwriting was not requested
var ErrTableExists = errors.New("dataset already has a CognateTable")

// Row is one cognate judgment
type Row struct {
	ID           string
	FormID       string
	CognatesetID string
	Alignment    []string
	Source       []string
}

// Fields renders the row in Columns order
func (r Row) Fields() []string {
	return []string{
		r.ID,
		r.FormID,
		r.CognatesetID,
		strings.Join(r.Alignment, alignmentSeparator),
		strings.Join(r.Source, sourceSeparator),
	}
}

// Columns is the CognateTable schema
var Columns = []cldf.Column{
	{Name: "ID", PropertyURL: cldf.TermsURI + "id", Datatype: "string"},
	{Name: "Form_ID", PropertyURL: cldf.TermsURI + "formReference", Datatype: "string"},
	{Name: "Cognateset_ID", PropertyURL: cldf.TermsURI + "cognatesetReference", Datatype: "string"},
	{Name: "Alignment", PropertyURL: cldf.TermsURI + "alignment", Datatype: "string", Separator: alignmentSeparator},
	{Name: "Source", PropertyURL: cldf.TermsURI + "source", Datatype: "string", Separator: sourceSeparator},
}

// Build converts engine results into cognate rows, one per result, in the
// order the engine returned them.
func Build(results []engine.Result) []Row {
	rows := make([]Row, len(results))
	for i, res := range results {
		rows[i] = Row{
			ID:           strconv.Itoa(i + 1),
			FormID:       res.Reference,
			CognatesetID: res.CognatesetID,
			Alignment:    append([]string(nil), res.Alignment...),
			Source:       []string{SourceLexStat},
		}
	}
	return rows
}

// Spec returns the table spec used to register the CognateTable in ds,
// keeping the file name of an existing table.
func Spec(ds *cldf.Dataset) cldf.TableSpec {
	spec := cldf.TableSpec{
		Component:  cldf.CognateTable,
		Columns:    Columns,
		PrimaryKey: []string{"ID"},
	}
	if rel, err := filepath.Rel(ds.Dir(), ds.TablePath(cldf.CognateTable)); err == nil {
		spec.URL = filepath.ToSlash(rel)
	}
	return spec
}

// Written describes a completed write
type Written struct {
	Path string
	Rows int
	// Archived is where the replaced table went, empty if there was none
	Archived string
}

// Write persists rows as the dataset's CognateTable. An existing table is
// moved to the archive first when overwrite is set, otherwise ErrTableExists
// is returned and nothing is touched. A failed write puts the archived table
// back.
func Write(ds *cldf.Dataset, rows []Row, overwrite bool) (*Written, error) {
	path := ds.TablePath(cldf.CognateTable)
	written := &Written{Path: path, Rows: len(rows)}

	if ds.HasComponent(cldf.CognateTable) {
		if !overwrite {
			return nil, ErrTableExists
		}
		if exists(path) {
			archived, err := archive.ArchiveTable(path)
			if err != nil {
				return nil, fmt.Errorf("failed to archive existing CognateTable: %w", err)
			}
			written.Archived = archived
		}
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = row.Fields()
	}

	if err := ds.WriteTable(Spec(ds), records); err != nil {
		if written.Archived != "" {
			if restoreErr := os.Rename(written.Archived, path); restoreErr != nil {
				return nil, fmt.Errorf("%w (restoring %s failed: %v)", err, written.Archived, restoreErr)
			}
		}
		return nil, err
	}
	return written, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
