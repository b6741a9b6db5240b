package pipeline

import (
	"fmt"
	"strconv"

	"codeberg.org/snonux/lexstatcldf/internal/cognate"
	"codeberg.org/snonux/lexstatcldf/internal/engine"
)

// ErrCognateTableExists aborts a run on a dataset that already has cognate
// judgments when overwriting was not requested
var ErrCognateTableExists = cognate.ErrTableExists

// StageError reports an engine failure together with the parameters of the
// failed call
type StageError struct {
	Stage         string
	Method        engine.Method
	ClusterMethod engine.ClusterMethod
	Threshold     *float64
	Rows          int
	Err           error
}

func (e *StageError) Error() string {
	threshold := "default"
	if e.Threshold != nil {
		threshold = strconv.FormatFloat(*e.Threshold, 'g', -1, 64)
	}
	return fmt.Sprintf("%s failed (method=%s cluster-method=%s threshold=%s rows=%d): %v",
		e.Stage, e.Method, e.ClusterMethod, threshold, e.Rows, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
