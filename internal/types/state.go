package types

// Enum values for engine lifecycle state
type EngineState string

const (
	StateUninitialized EngineState = "UNINITIALIZED"
	StateInitialized   EngineState = "INITIALIZED"
	StateRunning       EngineState = "RUNNING"
	StateStopped       EngineState = "STOPPED"
)

func (s EngineState) String() string {
	return string(s)
}
