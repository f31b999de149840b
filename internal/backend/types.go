package backend

import "os"

// Spec describes a process to start.
type Spec struct {
	// Name identifies the launch, e.g. "gaode_weather_8000".
	// Backends that need a unit or job name derive it from here.
	Name string

	// Command is the full argv. Command[0] may be a bare name to look up on PATH.
	Command []string

	// Dir is the child's working directory.
	Dir string

	// Output receives both stdout and stderr. The caller keeps ownership
	// and may close it once Spawn returns.
	Output *os.File
}

// Process describes a started process.
type Process struct {
	PID int

	// Handle is an optional backend-specific identifier (e.g. a systemd unit name).
	Handle string
}
