package eventlog

import (
	"maps"
	"strconv"
	"strings"
)

// EventLog receives structured launch events. Nothing in startsvc reads
// them back; they exist for operators (journalctl) and tests.
type EventLog interface {
	// Write sends a structured entry to the backing store.
	Write(message string, fields map[string]string) error

	// Close releases any resources.
	Close() error
}

// Event kinds.
const (
	EventLaunched = "launched"
	EventFailed   = "launch-failed"
)

// Event field names. Journal field names must be upper case.
const (
	FieldEvent      = "STARTSVC_EVENT"
	FieldService    = "STARTSVC_SERVICE"
	FieldPort       = "STARTSVC_PORT"
	FieldPID        = "STARTSVC_PID"
	FieldEntrypoint = "STARTSVC_ENTRYPOINT"
	FieldCommand    = "STARTSVC_COMMAND"
	FieldLog        = "STARTSVC_LOG"
	FieldError      = "STARTSVC_ERROR"
)

// Launch is what gets recorded about a spawn attempt.
type Launch struct {
	Service    string
	Port       string
	Entrypoint string
	Command    []string
	LogPath    string
}

func (l Launch) fields(event string) map[string]string {
	return map[string]string{
		FieldEvent:      event,
		FieldService:    l.Service,
		FieldPort:       l.Port,
		FieldEntrypoint: l.Entrypoint,
		FieldCommand:    strings.Join(l.Command, " "),
		FieldLog:        l.LogPath,
	}
}

// EmitLaunched records a successful spawn.
func EmitLaunched(log EventLog, l Launch, pid int) error {
	fields := l.fields(EventLaunched)
	fields[FieldPID] = strconv.Itoa(pid)
	return log.Write("Service "+l.Service+" launched on port "+l.Port, fields)
}

// EmitFailed records a failed spawn.
func EmitFailed(log EventLog, l Launch, cause error) error {
	fields := l.fields(EventFailed)
	fields[FieldError] = cause.Error()
	return log.Write("Service "+l.Service+" failed to launch on port "+l.Port, fields)
}

// Discard is an EventLog that drops everything.
var Discard EventLog = discard{}

type discard struct{}

func (discard) Write(string, map[string]string) error { return nil }
func (discard) Close() error                          { return nil }

func copyFields(fields map[string]string) map[string]string {
	if fields == nil {
		return nil
	}
	return maps.Clone(fields)
}
