// Package cldf reads and extends CLDF word-list datasets: a JSON metadata
// description plus CSV tables, or a single metadata-free forms file.
//
// Columns are located by their CLDF role (the fragment of the column's
// propertyUrl, e.g. "languageReference") instead of by name, because every
// dataset is free to name its columns. Writes go through a temp file and a
// rename so that a failed run never leaves a half-written table behind.
package cldf
