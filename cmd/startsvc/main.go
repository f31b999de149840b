// startsvc - start one Python service in the background
//
// Usage:
//
//	startsvc [flags] <service_name> <port>
//
// The service lives in src/<service_name> under the project root. Its output
// goes to logs/<service_name>_<port>.log and its PID to
// logs/<service_name>_<port>.pid. startsvc exits as soon as the process has
// been started; it never waits for or stops the service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/mbrock/startsvc/internal/backend"
	_ "github.com/mbrock/startsvc/internal/backend/all"
	"github.com/mbrock/startsvc/internal/config"
	"github.com/mbrock/startsvc/internal/dirs"
	"github.com/mbrock/startsvc/internal/eventlog"
	"github.com/mbrock/startsvc/internal/i18n"
	"github.com/mbrock/startsvc/internal/launcher"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
	"golang.org/x/text/message"
)

const progName = "startsvc"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv)
	stop()
	os.Exit(code)
}

// cli carries the output streams and message catalog of one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	msg    *message.Printer
	color  bool
	root   string
}

// flags holds the raw command-line values. Only flags the user actually set
// override the config file and environment.
type flags struct {
	set *flag.FlagSet

	root    string
	config  string
	venv    string
	mode    string
	python  string
	backend string
	lang    string
	journal bool
	debug   bool
}

func newFlags(c *cli) *flags {
	f := &flags{set: flag.NewFlagSet(progName, flag.ContinueOnError)}
	fs := f.set
	fs.SetOutput(c.stderr)
	fs.SortFlags = false
	// Flags end at the service name, so a port like -1 stays positional
	// and gets the port diagnostic.
	fs.SetInterspersed(false)

	fs.StringVar(&f.root, "root", "", "Project root (overrides STARTSVC_ROOT)")
	fs.StringVar(&f.config, "config", "", "Config file (default <root>/"+config.FileName+")")
	fs.StringVar(&f.venv, "venv", "", "Virtual environment directory, relative to the root (default .venv)")
	fs.StringVar(&f.mode, "mode", "", "Entry point mode: enhanced, baseline")
	fs.StringVar(&f.python, "python", "", "System interpreter for baseline mode (default python3)")
	fs.StringVar(&f.backend, "backend", "", "Backend: posix, systemd, auto")
	fs.StringVar(&f.lang, "lang", "", "Message language: en, zh (default from locale)")
	fs.BoolVar(&f.journal, "journal", false, "Record launch events in the systemd journal")
	fs.BoolVar(&f.debug, "debug", false, "Debug logging on stderr")

	fs.Usage = func() { c.usage(fs) }
	return f
}

func (c *cli) usage(fs *flag.FlagSet) {
	fmt.Fprintln(c.stderr, c.msg.Sprintf(i18n.Usage, progName, progName))
	fmt.Fprintln(c.stderr, "\nFlags:")
	fs.PrintDefaults()
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, lookup func(string) (string, bool)) int {
	c := &cli{
		stdout: stdout,
		stderr: stderr,
		msg:    i18n.New(i18n.Detect(lookup)),
		color:  isTerminal(stderr),
	}

	f := newFlags(c)
	if err := f.set.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		code := c.fatal("%v", err)
		c.usage(f.set)
		return code
	}

	cfg, err := loadConfig(f, lookup)
	if err != nil {
		return c.fatal("%v", err)
	}
	c.root = cfg.Root
	if cfg.Lang != "" {
		c.msg = i18n.New(cfg.Lang)
	}
	setupLogging(stderr, cfg.Debug)

	req, err := launcher.ParseArgs(f.set.Args())
	if err != nil {
		c.usage(f.set)
		return 1
	}

	bk, err := backend.Open(ctx, backend.Config{Kind: backend.Kind(cfg.Backend)})
	if err != nil {
		return c.fatal("initializing backend: %v", err)
	}
	defer bk.Close()

	events := openEvents(cfg.Journal)
	defer events.Close()

	slog.Debug("launching", "root", cfg.Root, "service", req.Service, "port", req.Port, "mode", cfg.Mode, "backend", cfg.Backend)
	res, err := launcher.New(cfg, bk, events).Launch(ctx, req)
	return c.report(req, res, err)
}

// loadConfig builds the effective configuration:
// defaults < config file < environment < flags.
func loadConfig(f *flags, lookup func(string) (string, bool)) (config.Config, error) {
	root := f.root
	if root == "" {
		if v, ok := lookup("STARTSVC_ROOT"); ok && v != "" {
			root = v
		} else {
			root = dirs.Root()
		}
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return config.Config{}, fmt.Errorf("resolving root: %w", err)
	}

	cfg := config.Default()
	cfg.Root = root

	path, optional := f.config, false
	if path == "" {
		if v, ok := lookup("STARTSVC_CONFIG"); ok && v != "" {
			path = v
		} else {
			path, optional = filepath.Join(root, config.FileName), true
		}
	}
	if cfg, err = config.LoadFile(cfg, path, optional); err != nil {
		return cfg, err
	}
	if cfg, err = cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}

	fs := f.set
	if fs.Changed("venv") {
		cfg.VenvDir = f.venv
	}
	if fs.Changed("mode") {
		cfg.Mode = config.Mode(f.mode)
	}
	if fs.Changed("python") {
		cfg.Python = f.python
	}
	if fs.Changed("backend") {
		cfg.Backend = f.backend
	}
	if fs.Changed("lang") {
		cfg.Lang = f.lang
	}
	if fs.Changed("journal") {
		cfg.Journal = f.journal
	}
	if fs.Changed("debug") {
		cfg.Debug = f.debug
	}

	return cfg, cfg.Validate()
}

func setupLogging(w io.Writer, debug bool) {
	logLevel := slog.LevelWarn
	if debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel})))
}

// openEvents returns the journald event log when requested and reachable.
func openEvents(journal bool) eventlog.EventLog {
	if !journal {
		return eventlog.Discard
	}
	j, err := eventlog.OpenJournald()
	if err != nil {
		slog.Warn("launch events will not be recorded", "error", err)
		return eventlog.Discard
	}
	return j
}

// report prints the outcome of a launch and returns the exit code.
func (c *cli) report(req launcher.Request, res launcher.Result, err error) int {
	if res.Entrypoint.Kind != "" {
		if res.Entrypoint.Warning != "" {
			c.warn(c.msg.Sprintf(i18n.NoEntryFile, c.rel(dirs.ServiceDir(c.root, req.Service)), dirs.SourcesDir+"."+req.Service))
		}
		fmt.Fprintln(c.stdout, c.msg.Sprintf(i18n.Starting, req.Service, req.Port))
	}
	if res.PID > 0 {
		fmt.Fprintln(c.stdout, c.msg.Sprintf(i18n.Started, strconv.Itoa(res.PID)))
		fmt.Fprintln(c.stdout, c.msg.Sprintf(i18n.LogFile, c.rel(res.LogPath)))
	}
	if err == nil {
		return 0
	}

	errs := launcher.Errors(err)
	if len(errs) == 0 {
		return c.fatal("%v", err)
	}
	for _, e := range errs {
		c.error(c.describe(e))
	}
	return 1
}

func (c *cli) describe(e *launcher.Error) string {
	switch e.Kind {
	case launcher.ErrServiceNotFound:
		return c.msg.Sprintf(i18n.ServiceNotFound, c.rel(e.Path))
	case launcher.ErrInvalidPort:
		return c.msg.Sprintf(i18n.InvalidPort, e.Value)
	case launcher.ErrVenvNotFound:
		return c.msg.Sprintf(i18n.VenvNotFound, c.rel(e.Path))
	case launcher.ErrInterpreterNotFound:
		return c.msg.Sprintf(i18n.InterpreterNotFound, c.rel(e.Path))
	case launcher.ErrSpawn:
		slog.Debug("spawn failed", "error", e.Cause)
		return c.msg.Sprintf(i18n.SpawnFailed, c.rel(e.Path)) + ": " + e.Cause.Error()
	case launcher.ErrPIDFile:
		return c.msg.Sprintf(i18n.PIDFileFailed, c.rel(e.Path)) + ": " + e.Cause.Error()
	default:
		return e.Error()
	}
}

// fatal prints an error and returns exit code 1.
func (c *cli) fatal(format string, args ...any) int {
	c.error(fmt.Sprintf(format, args...))
	return 1
}

func (c *cli) error(text string) {
	fmt.Fprintln(c.stderr, c.emphasize(c.msg.Sprintf(i18n.ErrorPrefix), "1;31")+text)
}

func (c *cli) warn(text string) {
	fmt.Fprintln(c.stderr, c.emphasize(c.msg.Sprintf(i18n.WarningPrefix), "1;33")+text)
}

func (c *cli) emphasize(s, sgr string) string {
	if !c.color {
		return s
	}
	return "\x1b[" + sgr + "m" + s + "\x1b[0m"
}

// rel shortens paths under the project root for display.
func (c *cli) rel(path string) string {
	if c.root == "" {
		return path
	}
	r, err := filepath.Rel(c.root, path)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return path
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
