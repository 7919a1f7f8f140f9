package domain

// GameState is the externally consumed enumeration describing whether
// ordinary gameplay input is currently permitted.
type GameState string

const (
	StateNormal        GameState = "normal"
	StateCutscene      GameState = "cutscene"
	StateDialogOptions GameState = "dialog_options"
	StatePaused        GameState = "paused"
)

// InstanceStatus is the lifecycle state of a single running graph instance.
type InstanceStatus string

const (
	StatusRunning   InstanceStatus = "running"
	StatusWaiting   InstanceStatus = "waiting"
	StatusCompleted InstanceStatus = "completed"
)
