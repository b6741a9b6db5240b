package cldf

import "strings"

// Form is one row of the FormTable, reduced to the fields the cognate
// pipeline needs
type Form struct {
	ID          string
	LanguageID  string
	ParameterID string
	Segments    []string
}

// Forms reads the FormTable in file order. The four required columns are
// looked up by role once; a missing role is an error.
func (d *Dataset) Forms() ([]Form, error) {
	id, err := d.column(FormTable, RoleID)
	if err != nil {
		return nil, err
	}
	language, err := d.column(FormTable, RoleLanguageReference)
	if err != nil {
		return nil, err
	}
	parameter, err := d.column(FormTable, RoleParameterReference)
	if err != nil {
		return nil, err
	}
	segments, err := d.column(FormTable, RoleSegments)
	if err != nil {
		return nil, err
	}

	records, err := d.Records(FormTable)
	if err != nil {
		return nil, err
	}

	forms := make([]Form, 0, len(records))
	for _, record := range records {
		forms = append(forms, Form{
			ID:          record[id.Name],
			LanguageID:  record[language.Name],
			ParameterID: record[parameter.Name],
			Segments:    splitList(record[segments.Name], segments.Separator),
		})
	}
	return forms, nil
}

// splitList splits a list-valued cell. A blank cell is an empty list; inner
// empty items are kept so that callers can reject them.
func splitList(value, separator string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if separator == "" {
		separator = " "
	}
	return strings.Split(value, separator)
}
