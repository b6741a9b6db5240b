package cldf

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"
)

// TermsURI is the namespace of CLDF ontology terms
const TermsURI = "http://cldf.clld.org/v1.0/terms.rdf#"

// Component names used by this tool
const (
	FormTable    = "FormTable"
	CognateTable = "CognateTable"
)

// Roles of FormTable columns
const (
	RoleID                 = "id"
	RoleLanguageReference  = "languageReference"
	RoleParameterReference = "parameterReference"
	RoleSegments           = "segments"
)

// roleAliases maps older pycldf role names onto the current CLDF terms
var roleAliases = map[string]string{
	"soundSequence": RoleSegments,
}

// defaultURLs are the conventional file names of components
var defaultURLs = map[string]string{
	FormTable:    "forms.csv",
	CognateTable: "cognates.csv",
}

// defaultColumnRoles maps conventional column names of metadata-free
// datasets onto their roles
var defaultColumnRoles = map[string]string{
	"ID":           RoleID,
	"Language_ID":  RoleLanguageReference,
	"Parameter_ID": RoleParameterReference,
	"Segments":     RoleSegments,
	"Form":         "form",
	"Value":        "value",
	"Comment":      "comment",
	"Source":       "source",
}

// Dialect is the subset of the CSVW dialect description this tool honours
type Dialect struct {
	Delimiter string `json:"delimiter,omitempty"`
}

// Column describes one column of a table schema
type Column struct {
	Name        string `json:"name"`
	PropertyURL string `json:"propertyUrl,omitempty"`
	Datatype    string `json:"datatype,omitempty"`
	Separator   string `json:"separator,omitempty"`
}

// Role returns the CLDF term this column is bound to, or "" if none
func (c Column) Role() string {
	return normalizeRole(termOf(c.PropertyURL))
}

// Table describes one table of the dataset
type Table struct {
	URL        string   `json:"url"`
	ConformsTo string   `json:"dc:conformsTo,omitempty"`
	Dialect    *Dialect `json:"dialect,omitempty"`
	Schema     struct {
		Columns    []Column `json:"columns"`
		PrimaryKey []string `json:"primaryKey,omitempty"`
	} `json:"tableSchema"`
}

// Component returns the CLDF component name of the table
func (t *Table) Component() string {
	return componentOf(t.ConformsTo, t.URL)
}

// componentOf names the component of a table entry by its conformsTo term,
// falling back to the conventional file name.
func componentOf(conformsTo, url string) string {
	if term := termOf(conformsTo); term != "" {
		return term
	}
	for component, name := range defaultURLs {
		if path.Base(url) == name {
			return component
		}
	}
	return ""
}

// ColumnByRole returns the column bound to role
func (t *Table) ColumnByRole(role string) (Column, bool) {
	role = normalizeRole(role)
	for _, col := range t.Schema.Columns {
		if col.Role() == role {
			return col, true
		}
	}
	return Column{}, false
}

type metadata struct {
	ConformsTo string   `json:"dc:conformsTo,omitempty"`
	Dialect    *Dialect `json:"dialect,omitempty"`
	Tables     []*Table `json:"tables"`
}

// TableSpec describes a table to be added to a dataset
type TableSpec struct {
	Component  string
	URL        string
	Columns    []Column
	PrimaryKey []string
}

func (s TableSpec) table() *Table {
	t := &Table{
		URL:        s.URL,
		ConformsTo: TermsURI + s.Component,
	}
	t.Schema.Columns = append([]Column(nil), s.Columns...)
	t.Schema.PrimaryKey = append([]string(nil), s.PrimaryKey...)
	return t
}

func termOf(uri string) string {
	if i := strings.LastIndex(uri, "#"); i >= 0 {
		return uri[i+1:]
	}
	return ""
}

func normalizeRole(role string) string {
	if alias, ok := roleAliases[role]; ok {
		return alias
	}
	return role
}

// readMetadata decodes the metadata file twice: once into the typed view
// used for lookups and once into a generic document that is written back
// untouched apart from the tables we add.
func readMetadata(file string) (*metadata, map[string]any, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, nil, fmt.Errorf("failed to parse metadata %s: %w", file, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse metadata %s: %w", file, err)
	}

	return &meta, doc, nil
}

// upsertTable replaces the table entry of the same component in doc or
// appends a new one.
func upsertTable(doc map[string]any, t *Table) error {
	encoded, err := json.Marshal(t)
	if err != nil {
		return err
	}
	var entry map[string]any
	if err := json.Unmarshal(encoded, &entry); err != nil {
		return err
	}

	tables, _ := doc["tables"].([]any)
	component := t.Component()
	for i, existing := range tables {
		m, ok := existing.(map[string]any)
		if !ok {
			continue
		}
		conformsTo, _ := m["dc:conformsTo"].(string)
		url, _ := m["url"].(string)
		if componentOf(conformsTo, url) == component {
			tables[i] = entry
			doc["tables"] = tables
			return nil
		}
	}
	doc["tables"] = append(tables, entry)
	return nil
}
