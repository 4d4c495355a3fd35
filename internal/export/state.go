package export

import "fmt"

// State is the position of a Job in the export state machine.
type State int

const (
	Idle State = iota
	DialogOpen
	Running
	Succeeded
	Failed
	Cancelled
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DialogOpen:
		return "dialog-open"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether s is one of the outcomes preceding Closed.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed || s == Cancelled
}

var transitions = map[State][]State{
	Idle:       {DialogOpen},
	DialogOpen: {Running, Failed, Closed},
	Running:    {Succeeded, Failed, Cancelled},
	Succeeded:  {Closed},
	Failed:     {Closed},
	Cancelled:  {Closed},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
