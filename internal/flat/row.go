package flat

import (
	"strconv"
	"strings"
)

// Header names of the flat table in column order: position, reference,
// doculect, concept, phonetic string, cleaned tokens. LingPy requires the
// position column to be called ID.
const (
	ColumnPosition  = "ID"
	ColumnReference = "REFERENCE"
	ColumnDoculect  = "DOCULECT"
	ColumnConcept   = "CONCEPT"
	ColumnPhonetic  = "IPA"
	ColumnTokens    = "TOKENS"
)

// Header is the fixed first row of every flat table
var Header = []string{
	ColumnPosition,
	ColumnReference,
	ColumnDoculect,
	ColumnConcept,
	ColumnPhonetic,
	ColumnTokens,
}

// Origin is the position of the first emitted row
const Origin = 1

// Row is one line of the flat table
type Row struct {
	// Position is the sequential LingPy ID. Skipped forms do not use up a
	// position, so it is unrelated to the form ID.
	Position int
	// Reference carries the original form ID
	Reference string
	Doculect  string
	Concept   string
	// Phonetic is the concatenation of the uncleaned tokens
	Phonetic string
	// Tokens are the cleaned tokens handed to clustering
	Tokens []string
}

// Fields returns the row as header-ordered strings, tokens joined by a space
func (r Row) Fields() []string {
	return []string{
		strconv.Itoa(r.Position),
		r.Reference,
		r.Doculect,
		r.Concept,
		r.Phonetic,
		strings.Join(r.Tokens, " "),
	}
}
