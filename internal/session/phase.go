// Package session implements the session domain model (spec §4.2) and the
// session manager that owns the ordered set of sessions (spec §4.3).
package session

// Phase is a session's coarse lifecycle state (spec §3, §4.2).
type Phase int

const (
	Starting Phase = iota
	Running
	Reloading
	Restarting
	Stopping
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case Reloading:
		return "Reloading"
	case Restarting:
		return "Restarting"
	case Stopping:
		return "Stopping"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// legalTransitions encodes the phase machine from spec §4.9 "Key state
// machines": every edge not listed here is a no-op, per spec §4.2
// ("Illegal transitions are ignored").
var legalTransitions = map[Phase]map[Phase]bool{
	Starting:   {Running: true, Stopping: true, Stopped: true},
	Running:    {Reloading: true, Restarting: true, Stopping: true, Stopped: true},
	Reloading:  {Running: true, Stopping: true, Stopped: true},
	Restarting: {Running: true, Stopping: true, Stopped: true},
	Stopping:   {Stopped: true},
	Stopped:    {},
}

// CanTransition reports whether moving from `from` to `to` is legal.
func CanTransition(from, to Phase) bool {
	return legalTransitions[from][to]
}
