package call

// State of a call session
type State int

const (
	Idle State = iota
	Configuring
	Prepared
	AwaitingConfirmation
	Signing
	Submitted
	RepeatPrompt
	Done
	Canceled
)

var stateNames = map[State]string{
	Idle:                 "idle",
	Configuring:          "configuring",
	Prepared:             "prepared",
	AwaitingConfirmation: "awaiting-confirmation",
	Signing:              "signing",
	Submitted:            "submitted",
	RepeatPrompt:         "repeat-prompt",
	Done:                 "done",
	Canceled:             "canceled",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal states end the session
func (s State) Terminal() bool {
	return s == Done || s == Canceled
}
