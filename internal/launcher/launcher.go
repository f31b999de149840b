// Package launcher starts one service under src/<name> as a detached
// background process bound to a port.
//
// A launch is a single pass:
//
//	validate inputs → resolve interpreter → resolve entry point →
//	spawn detached process → write PID file → report
//
// Nothing is written to disk until every precondition has passed. Success
// means the spawn call succeeded; a child that crashes right after starting
// still counts as launched.
package launcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/mbrock/startsvc/internal/backend"
	"github.com/mbrock/startsvc/internal/config"
	"github.com/mbrock/startsvc/internal/dirs"
	"github.com/mbrock/startsvc/internal/entrypoint"
	"github.com/mbrock/startsvc/internal/eventlog"
	"github.com/mbrock/startsvc/internal/pidfile"
	"github.com/mbrock/startsvc/internal/venv"
)

// portPattern is the only port validation performed; there is no range check.
var portPattern = regexp.MustCompile(`^[0-9]+$`)

// Request names what to launch.
type Request struct {
	Service string
	Port    string
}

// ParseArgs builds a Request from the positional arguments
// <service_name> <port>.
func ParseArgs(args []string) (Request, error) {
	if len(args) != 2 {
		return Request{}, ErrUsage
	}
	return Request{Service: args[0], Port: args[1]}, nil
}

// Result describes a launch. Fields are filled in as far as the launch got,
// so a failed launch still reports its entry point and log path.
type Result struct {
	PID         int
	Handle      string
	Interpreter string
	Entrypoint  entrypoint.Entrypoint
	LogPath     string
	PIDPath     string
}

// Launcher starts services with a fixed configuration.
type Launcher struct {
	cfg     config.Config
	backend backend.Backend
	events  eventlog.EventLog
}

// New creates a Launcher. events may be nil.
func New(cfg config.Config, b backend.Backend, events eventlog.EventLog) *Launcher {
	if events == nil {
		events = eventlog.Discard
	}
	return &Launcher{cfg: cfg, backend: b, events: events}
}

// Launch starts req.Service on req.Port.
func (l *Launcher) Launch(ctx context.Context, req Request) (Result, error) {
	root := l.cfg.Root
	serviceDir := dirs.ServiceDir(root, req.Service)

	if err := validate(serviceDir, req); err != nil {
		return Result{}, err
	}

	interpreter, err := l.interpreter()
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Interpreter: interpreter,
		LogPath:     dirs.LogPath(root, req.Service, req.Port),
		PIDPath:     dirs.PIDPath(root, req.Service, req.Port),
	}

	ep, err := entrypoint.Resolve(l.rules(), os.DirFS(serviceDir), entrypoint.Target{
		Service:     req.Service,
		Port:        req.Port,
		Interpreter: interpreter,
	})
	if err != nil {
		return res, err
	}
	res.Entrypoint = ep
	slog.Debug("entry point resolved", "service", req.Service, "kind", ep.Kind, "args", ep.Args)

	launch := eventlog.Launch{
		Service:    req.Service,
		Port:       req.Port,
		Entrypoint: string(ep.Kind),
		Command:    ep.Args,
		LogPath:    res.LogPath,
	}

	proc, err := l.spawn(ctx, req, ep, res.LogPath)
	if err != nil {
		if eerr := eventlog.EmitFailed(l.events, launch, err); eerr != nil {
			slog.Warn("recording failed launch", "error", eerr)
		}
		return res, &Error{Kind: ErrSpawn, Path: res.LogPath, Cause: err}
	}
	res.PID = proc.PID
	res.Handle = proc.Handle

	if err := pidfile.Write(res.PIDPath, proc.PID); err != nil {
		return res, &Error{Kind: ErrPIDFile, Path: res.PIDPath, Cause: err}
	}

	if err := eventlog.EmitLaunched(l.events, launch, proc.PID); err != nil {
		slog.Warn("recording launch", "error", err)
	}
	return res, nil
}

// validate checks the service directory and port. Both are checked so that
// an operator with two bad inputs sees both problems at once.
func validate(serviceDir string, req Request) error {
	var errs []error

	if !validServiceName(req.Service) || !isDir(serviceDir) {
		errs = append(errs, &Error{Kind: ErrServiceNotFound, Path: serviceDir, Value: req.Service})
	}
	if !portPattern.MatchString(req.Port) {
		errs = append(errs, &Error{Kind: ErrInvalidPort, Value: req.Port})
	}

	return errors.Join(errs...)
}

// validServiceName rejects names that would leave src/.
func validServiceName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name
}

// interpreter resolves the runtime executable for the configured mode.
func (l *Launcher) interpreter() (string, error) {
	if l.cfg.Mode == config.ModeBaseline {
		return l.cfg.Python, nil
	}

	dir := l.cfg.VenvDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(l.cfg.Root, dir)
	}

	env, err := venv.Resolve(dir)
	switch {
	case err == nil:
		return env.Interpreter, nil
	case errors.Is(err, venv.ErrNotFound):
		return "", &Error{Kind: ErrVenvNotFound, Path: dir}
	default:
		return "", &Error{Kind: ErrInterpreterNotFound, Path: dir}
	}
}

func (l *Launcher) rules() []entrypoint.Rule {
	if l.cfg.Mode == config.ModeBaseline {
		return entrypoint.Baseline
	}
	return entrypoint.Enhanced
}

// spawn creates the log file and starts the process with output redirected into it.
func (l *Launcher) spawn(ctx context.Context, req Request, ep entrypoint.Entrypoint, logPath string) (backend.Process, error) {
	out, err := backend.CreateLog(logPath)
	if err != nil {
		return backend.Process{}, err
	}
	// The child holds its own descriptor once started.
	defer out.Close()

	return l.backend.Spawn(ctx, backend.Spec{
		Name:    req.Service + "_" + req.Port,
		Command: ep.Args,
		Dir:     l.cfg.Root,
		Output:  out,
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
