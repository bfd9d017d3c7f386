package speech

// Status is the lifecycle state of the current utterance.
type Status int

const (
	// StatusIdle means no utterance is in flight. Initial and terminal
	// between calls.
	StatusIdle Status = iota
	// StatusRequesting means synthesis is in flight but nothing is audible
	// yet.
	StatusRequesting
	// StatusPlaying means audio is audible.
	StatusPlaying
	// StatusError means the last utterance failed on every path. The next
	// speak or stop resets the machine to idle.
	StatusError
)

// String returns the lowercase state name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRequesting:
		return "requesting"
	case StatusPlaying:
		return "playing"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Utterance is a snapshot of the single live utterance. RequestID increases
// monotonically; completions carrying an older id are stale and discarded.
type Utterance struct {
	Status    Status
	RequestID uint64
	Text      string
	VoiceID   string
	Engine    string
	Err       error
}

// validTransition reports whether the utterance machine allows moving from
// one status to another. A new speak call may preempt any state
// (latest call wins), failures may strike anywhere, and every path drains
// back to idle; audible playback is only reachable from requesting.
func validTransition(from, to Status) bool {
	switch to {
	case StatusPlaying:
		return from == StatusRequesting
	case StatusIdle, StatusRequesting, StatusError:
		return true
	default:
		return false
	}
}
