// Package pipeline runs one dataset through the cognate detection pipeline:
// preflight check, flat table staging, optional bad token scan, scorer
// training, clustering, alignment and the CognateTable write.
//
// The run is a small state machine. Every transition is logged and kept in
// the Outcome so callers and tests can see exactly which steps ran. A
// dataset that already carries a CognateTable is left alone unless
// overwriting was requested; in that case nothing is staged and the engine
// is never started.
package pipeline
