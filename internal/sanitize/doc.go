// Package sanitize holds the pure string rules applied before data reaches
// the tab-delimited flat table: delimiter replacement for text fields and
// removal of punctuation-only segments from token sequences.
package sanitize
