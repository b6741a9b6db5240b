package cldf

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Conventional dataset entry points, tried in this order when no path is given
const (
	DefaultMetadataFile = "Wordlist-metadata.json"
	DefaultFormsFile    = "forms.csv"
)

// ErrColumnNotFound is returned when a required role has no column
var ErrColumnNotFound = errors.New("column not found")

// ErrComponentNotFound is returned when a dataset lacks a component
var ErrComponentNotFound = errors.New("component not found")

// Dataset is a loaded CLDF dataset
type Dataset struct {
	path         string
	dir          string
	metadataFree bool
	meta         *metadata
	doc          map[string]any
}

// Resolve loads the dataset at path. An empty path falls back to
// Wordlist-metadata.json and then forms.csv in the working directory.
func Resolve(path string) (*Dataset, error) {
	if path != "" {
		return Load(path)
	}

	ds, err := Load(DefaultMetadataFile)
	if errors.Is(err, fs.ErrNotExist) {
		return Load(DefaultFormsFile)
	}
	return ds, err
}

// Load reads a dataset from a metadata file (.json), a metadata-free data
// file, or a directory holding either of them.
func Load(path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}

	if info.IsDir() {
		for _, name := range []string{DefaultMetadataFile, DefaultFormsFile} {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				return Load(candidate)
			}
		}
		return nil, fmt.Errorf("dataset %s: no %s or %s: %w", path, DefaultMetadataFile, DefaultFormsFile, fs.ErrNotExist)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return loadMetadata(path)
	}
	return loadData(path)
}

func loadMetadata(path string) (*Dataset, error) {
	meta, doc, err := readMetadata(path)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		path: path,
		dir:  filepath.Dir(path),
		meta: meta,
		doc:  doc,
	}, nil
}

// loadData builds an in-memory description of a single forms file, binding
// conventional column names to their roles.
func loadData(path string) (*Dataset, error) {
	header, err := readHeader(path, ',')
	if err != nil {
		return nil, err
	}

	t := &Table{
		URL:        filepath.Base(path),
		ConformsTo: TermsURI + FormTable,
	}
	for _, name := range header {
		col := Column{Name: name}
		if role, ok := defaultColumnRoles[name]; ok {
			col.PropertyURL = TermsURI + role
		}
		if col.Role() == RoleSegments {
			col.Separator = " "
		}
		t.Schema.Columns = append(t.Schema.Columns, col)
	}

	return &Dataset{
		path:         path,
		dir:          filepath.Dir(path),
		metadataFree: true,
		meta:         &metadata{Tables: []*Table{t}},
	}, nil
}

// Path returns the file the dataset was loaded from
func (d *Dataset) Path() string {
	return d.path
}

// Dir returns the directory holding the dataset's files
func (d *Dataset) Dir() string {
	return d.dir
}

// MetadataFree reports whether the dataset was loaded without metadata
func (d *Dataset) MetadataFree() bool {
	return d.metadataFree
}

// Table returns the table of a component
func (d *Dataset) Table(component string) (*Table, error) {
	for _, t := range d.meta.Tables {
		if t.Component() == component {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", component, ErrComponentNotFound)
}

// Column returns the name of the column bound to role in component
func (d *Dataset) Column(component, role string) (string, error) {
	col, err := d.column(component, role)
	if err != nil {
		return "", err
	}
	return col.Name, nil
}

func (d *Dataset) column(component, role string) (Column, error) {
	t, err := d.Table(component)
	if err != nil {
		return Column{}, err
	}
	col, ok := t.ColumnByRole(role)
	if !ok {
		return Column{}, fmt.Errorf("%s has no %s column: %w", component, role, ErrColumnNotFound)
	}
	return col, nil
}

// HasComponent reports whether the dataset already contains component. For
// metadata-free datasets the conventional file next to the forms decides.
func (d *Dataset) HasComponent(component string) bool {
	if d.metadataFree {
		url, ok := defaultURLs[component]
		if !ok {
			return false
		}
		_, err := os.Stat(filepath.Join(d.dir, url))
		return err == nil
	}
	_, err := d.Table(component)
	return err == nil
}

// TablePath returns the file path of component's table, or the path it
// would get if it were added.
func (d *Dataset) TablePath(component string) string {
	if t, err := d.Table(component); err == nil {
		return filepath.Join(d.dir, filepath.FromSlash(t.URL))
	}
	return filepath.Join(d.dir, defaultURLs[component])
}

// Records reads all rows of a component keyed by column name
func (d *Dataset) Records(component string) ([]map[string]string, error) {
	t, err := d.Table(component)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(d.dir, filepath.FromSlash(t.URL)))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", component, err)
	}
	defer file.Close()

	reader := newCSVReader(file, d.delimiter(t))
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", component, err)
	}

	var records []map[string]string
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", component, err)
		}
		record := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(fields) {
				record[name] = fields[i]
			}
		}
		records = append(records, record)
	}

	return records, nil
}

// WriteTable writes rows as component's table and registers the table in
// the metadata. Existing files are replaced.
func (d *Dataset) WriteTable(spec TableSpec, rows [][]string) error {
	t := spec.table()
	if t.URL == "" {
		t.URL = defaultURLs[spec.Component]
	}
	if existing, err := d.Table(spec.Component); err == nil && existing.Dialect != nil {
		t.Dialect = existing.Dialect
	}
	delimiter := d.delimiter(t)

	header := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		header[i] = col.Name
	}

	target := filepath.Join(d.dir, filepath.FromSlash(t.URL))
	err := writeAtomic(target, func(w io.Writer) error {
		writer := csv.NewWriter(w)
		writer.Comma = delimiter
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := writer.WriteAll(rows); err != nil {
			return fmt.Errorf("failed to write rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", spec.Component, err)
	}

	if d.metadataFree {
		d.replaceTable(t)
		return nil
	}

	if err := upsertTable(d.doc, t); err != nil {
		return fmt.Errorf("failed to register %s: %w", spec.Component, err)
	}
	err = writeAtomic(d.path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "    ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(d.doc)
	})
	if err != nil {
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	d.replaceTable(t)
	return nil
}

func (d *Dataset) replaceTable(t *Table) {
	for i, existing := range d.meta.Tables {
		if existing.Component() == t.Component() {
			d.meta.Tables[i] = t
			return
		}
	}
	d.meta.Tables = append(d.meta.Tables, t)
}

func (d *Dataset) delimiter(t *Table) rune {
	for _, dialect := range []*Dialect{t.Dialect, d.meta.Dialect} {
		if dialect != nil && dialect.Delimiter != "" {
			return []rune(dialect.Delimiter)[0]
		}
	}
	return ','
}

// newCSVReader strips a leading UTF-8 byte order mark, which spreadsheet
// exports of CLDF tables often carry.
func newCSVReader(r io.Reader, delimiter rune) *csv.Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	return reader
}

func readHeader(path string, delimiter rune) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	defer file.Close()

	header, err := newCSVReader(file, delimiter).Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	return header, nil
}

// writeAtomic writes through a temp file in the target directory and
// renames it over target once write succeeded.
func writeAtomic(target string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
