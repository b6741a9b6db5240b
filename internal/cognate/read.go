package cognate

import (
	"strings"

	"codeberg.org/snonux/lexstatcldf/internal/cldf"
)

// Read loads the dataset's CognateTable
func Read(ds *cldf.Dataset) ([]Row, error) {
	records, err := ds.Records(cldf.CognateTable)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{
			ID:           rec["ID"],
			FormID:       rec["Form_ID"],
			CognatesetID: rec["Cognateset_ID"],
			Alignment:    split(rec["Alignment"], alignmentSeparator),
			Source:       split(rec["Source"], sourceSeparator),
		})
	}
	return rows, nil
}

func split(value, sep string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, sep)
}
