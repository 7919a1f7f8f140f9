package domain

// HostRequest represents a side-effect that the engine asks the host to
// perform: present a line, move an object. The engine itself never renders.
type HostRequest struct {
	Type    string // e.g. "SAY", "MOVE_TO"
	Payload any
}

// Standard host request types.
const (
	// RequestSay asks the host to present a line of speech.
	// Payload: SayPayload.
	RequestSay = "SAY"

	// RequestMove asks the host to move an object toward a target.
	// Payload: MovePayload.
	RequestMove = "MOVE_TO"

	// RequestSystem is a meta-message from the engine (log, status).
	// Payload: string.
	RequestSystem = "SYSTEM_MESSAGE"
)

// SayPayload carries one line of speech and how long it stays on screen.
type SayPayload struct {
	Speaker  string  `json:"speaker,omitempty"`
	Line     string  `json:"line"`
	Duration float64 `json:"duration,omitempty"`
}

// MovePayload asks the host to move Object toward Target. Teleport means the
// completed effect is applied instantly (skip path).
type MovePayload struct {
	Object   string  `json:"object"`
	Target   Vector3 `json:"target"`
	Teleport bool    `json:"teleport,omitempty"`
}
