package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/snonux/lexstatcldf/internal/flat"
)

// ErrEngine marks failures reported by the engine itself
var ErrEngine = errors.New("engine error")

// Method selects the distance/clustering strategy
type Method string

const (
	MethodSCA      Method = "sca"
	MethodLexStat  Method = "lexstat"
	MethodEditDist Method = "edit-dist"
	MethodTurchin  Method = "turchin"
)

// Methods lists the accepted methods
var Methods = []Method{MethodSCA, MethodLexStat, MethodEditDist, MethodTurchin}

// ParseMethod validates a method name
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown method %q (want one of %s)", s, joinNames(Methods))
}

// ClusterMethod selects the partitioning of the distance matrix
type ClusterMethod string

const (
	ClusterUPGMA    ClusterMethod = "upgma"
	ClusterSingle   ClusterMethod = "single"
	ClusterComplete ClusterMethod = "complete"
	ClusterMCL      ClusterMethod = "mcl"
	ClusterInfomap  ClusterMethod = "infomap"
)

// ClusterMethods lists the accepted cluster methods
var ClusterMethods = []ClusterMethod{ClusterUPGMA, ClusterSingle, ClusterComplete, ClusterMCL, ClusterInfomap}

// ParseClusterMethod validates a cluster method name
func ParseClusterMethod(s string) (ClusterMethod, error) {
	for _, m := range ClusterMethods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown cluster method %q (want one of %s)", s, joinNames(ClusterMethods))
}

func joinNames[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

// ScorerParams configure training of the substitution scorer
type ScorerParams struct {
	Preprocessing bool
	Runs          int
	Ratio         [2]int
	VScale        float64
}

// DefaultScorer returns the fixed scorer parameters of the pipeline
func DefaultScorer() ScorerParams {
	return ScorerParams{
		Preprocessing: false,
		Runs:          10000,
		Ratio:         [2]int{2, 1},
		VScale:        1.0,
	}
}

// ClusterParams configure one clustering pass
type ClusterParams struct {
	Method        Method
	ClusterMethod ClusterMethod
	// Threshold nil leaves the cut-off to the engine
	Threshold *float64
	// Ref names the column receiving the cognate set IDs
	Ref string
}

// AlignParams configure the alignment pass
type AlignParams struct {
	Model string
	Ref   string
	// OutputPrefix, if set, makes the engine dump its own TSV output
	OutputPrefix string
}

// Result is the engine's verdict for one flat row
type Result struct {
	Position     int
	Reference    string
	CognatesetID string
	Alignment    []string
	// Fields holds any further columns the engine reported
	Fields map[string]string
}

// Engine is the external clustering and alignment engine
type Engine interface {
	// Input tells which flat sink the engine reads from
	Input() flat.Kind
	Load(ctx context.Context, source flat.Source) error
	TrainScorer(ctx context.Context, params ScorerParams) error
	Cluster(ctx context.Context, params ClusterParams) error
	Align(ctx context.Context, params AlignParams) error
	// Results returns one result per loaded row in the engine's row order
	Results(ctx context.Context) ([]Result, error)
	Close() error
}
