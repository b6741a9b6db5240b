package pipeline

// State is a step of a pipeline run
type State int

const (
	StateIdle State = iota
	StatePreflightCheck
	StateAborted
	StateScorerTrained
	StateClustered
	StateAligned
	StateDone
)

var stateNames = map[State]string{
	StateIdle:           "idle",
	StatePreflightCheck: "preflight",
	StateAborted:        "aborted",
	StateScorerTrained:  "scorer-trained",
	StateClustered:      "clustered",
	StateAligned:        "aligned",
	StateDone:           "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
