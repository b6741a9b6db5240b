// Package cognate turns engine results into CognateTable rows and writes
// them back into the dataset.
//
// Row IDs are a 1-based sequence in engine row order. Every row carries the
// original form ID as Form_ID and "LexStat" as its source, so the judgments
// stay traceable to the automatic analysis after manual editing.
package cognate
