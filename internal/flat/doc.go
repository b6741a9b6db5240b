// Package flat translates CLDF forms into the flat, tab-delimited word list
// that LingPy reads, and stages it either in a temp file or in memory.
//
// Translation lives in Bridge and is written once; sinks only decide where
// the already sanitized rows end up.
package flat
