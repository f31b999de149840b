package eventlog

import (
	"errors"
	"log/slog"

	"github.com/coreos/go-systemd/v22/journal"
)

// ErrJournalUnavailable means no journald socket is reachable.
var ErrJournalUnavailable = errors.New("journald is not available")

// JournaldEventLog sends entries to the local journald socket.
type JournaldEventLog struct{}

var _ EventLog = (*JournaldEventLog)(nil)

// OpenJournald returns a journald-backed EventLog, or ErrJournalUnavailable.
func OpenJournald() (*JournaldEventLog, error) {
	if !journal.Enabled() {
		return nil, ErrJournalUnavailable
	}
	return &JournaldEventLog{}, nil
}

// Write sends an entry to journald. Failed launches are logged at error priority.
func (l *JournaldEventLog) Write(message string, fields map[string]string) error {
	pri := journal.PriInfo
	if fields[FieldEvent] == EventFailed {
		pri = journal.PriErr
	}
	slog.Debug("journald eventlog writing", "message", message, "event", fields[FieldEvent])
	return journal.Send(message, pri, fields)
}

func (l *JournaldEventLog) Close() error { return nil }
