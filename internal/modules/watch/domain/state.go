package domain

// State is the debounce and coalesce state of a watch loop.
//
//	Idle --change--> Pending --fire--> Running --complete--> Idle
//	Running --fire--> PendingRerun --complete--> Running
type State int

const (
	StateIdle State = iota
	StatePending
	StateRunning
	StatePendingRerun
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StatePendingRerun:
		return "pending-rerun"
	default:
		return "unknown"
	}
}

// OnChange records a file change. Only an idle loop changes state; a running
// loop keeps running and waits for the debounce timer to fire.
func (s State) OnChange() State {
	if s == StateIdle {
		return StatePending
	}
	return s
}

// OnFire reports the next state and whether a run must start now. At most one
// rerun is ever queued.
func (s State) OnFire() (State, bool) {
	switch s {
	case StateRunning, StatePendingRerun:
		return StatePendingRerun, false
	default:
		return StateRunning, true
	}
}

// OnComplete reports the next state once the in-flight run finishes and
// whether the queued rerun must start.
func (s State) OnComplete() (State, bool) {
	if s == StatePendingRerun {
		return StateRunning, true
	}
	return StateIdle, false
}

// Arm tracks edge-triggered pass recording: a pass is recorded only while
// armed, and any non-passing verdict re-arms.
type Arm struct {
	disarmed bool
}

// Observe folds one verdict and reports whether a pass should be recorded.
func (a *Arm) Observe(passed bool) bool {
	if !passed {
		a.disarmed = false
		return false
	}
	if a.disarmed {
		return false
	}
	a.disarmed = true
	return true
}

func (a Arm) Armed() bool {
	return !a.disarmed
}
