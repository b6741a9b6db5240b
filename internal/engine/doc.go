// Package engine drives the external cognate-detection engine. The Engine
// interface names the operations the pipeline sequences (load, scorer
// training, clustering, alignment, results); LingPy implements it by
// running a Python session that answers one JSON request per line.
package engine
