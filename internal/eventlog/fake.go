package eventlog

import (
	"fmt"
	"sync"
)

// Record is an entry captured by FakeEventLog.
type Record struct {
	Message string
	Fields  map[string]string
}

// FakeEventLog is an in-memory implementation of EventLog for unit tests.
type FakeEventLog struct {
	mu      sync.Mutex
	entries []Record
	closed  bool
}

var _ EventLog = (*FakeEventLog)(nil)

// NewFakeEventLog creates an empty FakeEventLog.
func NewFakeEventLog() *FakeEventLog {
	return &FakeEventLog{}
}

func (f *FakeEventLog) Write(message string, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("event log closed")
	}
	f.entries = append(f.entries, Record{Message: message, Fields: copyFields(fields)})
	return nil
}

// Entries returns a copy of all written entries.
func (f *FakeEventLog) Entries() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Record, len(f.entries))
	copy(out, f.entries)
	return out
}

func (f *FakeEventLog) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
