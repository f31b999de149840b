package launcher

import (
	"errors"
	"strings"

	"github.com/mbrock/startsvc/internal/venv"
)

// Failure kinds. Every failure is fatal for the invocation; callers tell
// them apart with errors.Is.
var (
	ErrUsage               = errors.New("expected exactly two arguments: service name and port")
	ErrServiceNotFound     = errors.New("service directory does not exist")
	ErrInvalidPort         = errors.New("port must be a number")
	ErrVenvNotFound        = venv.ErrNotFound
	ErrInterpreterNotFound = venv.ErrNoInterpreter
	ErrSpawn               = errors.New("failed to start service")
	ErrPIDFile             = errors.New("failed to write pid file")
)

// Error is a launch failure with the details an operator needs.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind error
	// Path is the file or directory the failure is about, if any.
	Path string
	// Value is the offending input, if any.
	Value string
	// Cause is the underlying error, if any.
	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	if e.Value != "" {
		b.WriteString(": ")
		b.WriteString(e.Value)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Errors flattens err into the launch Errors it carries, in order.
// Errors joined with errors.Join are expanded.
func Errors(err error) []*Error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if _, isLaunch := err.(*Error); !isLaunch {
			var out []*Error
			for _, e := range joined.Unwrap() {
				out = append(out, Errors(e)...)
			}
			return out
		}
	}
	var le *Error
	if errors.As(err, &le) {
		return []*Error{le}
	}
	return nil
}
