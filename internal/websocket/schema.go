package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer        Action = "answer"
	ActionSaveNext      Action = "save_next"
	ActionMark          Action = "mark"
	ActionClear         Action = "clear"
	ActionNavigate      Action = "navigate"
	ActionSwitchSection Action = "switch_section"
	ActionSubmit        Action = "submit"
	ActionConfirm       Action = "confirm"
	ActionCancel        Action = "cancel"
	ActionPing          Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest records an answer value for the current question.
type AnswerRequest struct {
	Action Action `json:"action"`
	Value  string `json:"value"`
}

// NavigateRequest moves the cursor within the active section.
type NavigateRequest struct {
	Action   Action `json:"action"`
	Question int    `json:"question"`
}

// SwitchSectionRequest asks to move to another section. The switch only
// happens after a confirm round trip while the current section has time left.
type SwitchSectionRequest struct {
	Action  Action `json:"action"`
	Section int    `json:"section"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState           Event = "state"
	EventTick            Event = "tick"
	EventSectionLocked   Event = "section_locked"
	EventSectionSwitched Event = "section_switched"
	EventCompleted       Event = "completed"
	EventError           Event = "error"
	EventPong            Event = "pong"
)

// StateResponse carries the full view, sent on connect and after every
// client action so the UI never has to reconstruct state from deltas.
type StateResponse struct {
	Event Event       `json:"event"`
	State interface{} `json:"state"`
}

// TransitionResponse relays a controller event (tick, lock, switch, done).
type TransitionResponse struct {
	Event            Event       `json:"event"`
	Section          int         `json:"section"`
	RemainingSeconds int         `json:"remaining_seconds,omitempty"`
	Score            interface{} `json:"score,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
