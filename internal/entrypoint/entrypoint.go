// Package entrypoint resolves how a service under src/<name> is started.
//
// Resolution walks an ordered list of rules. Each rule pairs a predicate over
// the service directory with a command builder; the first rule whose
// predicate matches wins. Two rule sets are provided:
//
//   - Enhanced: main.py, then __main__.py, then an inline import of src.<name>.main
//   - Baseline: always runs the src.<name>.main module
package entrypoint

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
)

// Kind identifies a launch strategy.
type Kind string

const (
	KindDirectScript  Kind = "direct-script"
	KindModule        Kind = "module"
	KindDynamicImport Kind = "dynamic-import"
	KindBaseline      Kind = "baseline-module"
)

// Warnings emitted by rules. Callers may translate them by identity.
const (
	WarnNoEntryFile = "no main.py or __main__.py found, falling back to importing main()"
)

// ErrNoMatch means no rule matched the service directory.
var ErrNoMatch = errors.New("no entry point rule matched")

// Target describes what is being launched.
type Target struct {
	// Service is the directory name under src/.
	Service string
	// Port is passed through verbatim.
	Port string
	// Interpreter is the runtime executable (venv python or system python).
	Interpreter string
}

// Entrypoint is a resolved launch strategy.
type Entrypoint struct {
	Kind Kind
	// Args is the full argv, starting with the interpreter.
	// Paths in Args are relative to the project root.
	Args []string
	// Warning is non-empty when the operator should be told something.
	Warning string
}

// Rule is one resolution strategy.
type Rule struct {
	Kind Kind
	// Match reports whether the rule applies. svc is rooted at src/<name>.
	Match func(svc fs.FS) bool
	// Build constructs the entry point.
	Build func(t Target) Entrypoint
}

// Enhanced is the default rule set, in priority order.
var Enhanced = []Rule{
	{Kind: KindDirectScript, Match: hasFile("main.py"), Build: directScript},
	{Kind: KindModule, Match: hasFile("__main__.py"), Build: packageModule},
	{Kind: KindDynamicImport, Match: always, Build: dynamicImport},
}

// Baseline ignores the directory contents.
var Baseline = []Rule{
	{Kind: KindBaseline, Match: always, Build: baselineModule},
}

// Resolve returns the entry point built by the first matching rule.
func Resolve(rules []Rule, svc fs.FS, t Target) (Entrypoint, error) {
	for _, r := range rules {
		if r.Match(svc) {
			return r.Build(t), nil
		}
	}
	return Entrypoint{}, fmt.Errorf("%w for service %q", ErrNoMatch, t.Service)
}

// PortArg is the single argument every service understands.
func PortArg(port string) string {
	return "--port=" + port
}

func hasFile(name string) func(fs.FS) bool {
	return func(svc fs.FS) bool {
		info, err := fs.Stat(svc, name)
		return err == nil && !info.IsDir()
	}
}

func always(fs.FS) bool { return true }

func directScript(t Target) Entrypoint {
	// path.Join keeps forward slashes; python accepts them on every platform.
	script := path.Join("src", t.Service, "main.py")
	return Entrypoint{
		Kind: KindDirectScript,
		Args: []string{t.Interpreter, script, PortArg(t.Port)},
	}
}

func packageModule(t Target) Entrypoint {
	return Entrypoint{
		Kind: KindModule,
		Args: []string{t.Interpreter, "-m", "src." + t.Service, PortArg(t.Port)},
	}
}

func dynamicImport(t Target) Entrypoint {
	return Entrypoint{
		Kind:    KindDynamicImport,
		Args:    []string{t.Interpreter, "-c", InlineProgram(t.Service, t.Port)},
		Warning: WarnNoEntryFile,
	}
}

func baselineModule(t Target) Entrypoint {
	return Entrypoint{
		Kind: KindBaseline,
		Args: []string{t.Interpreter, "-m", "src." + t.Service + ".main", PortArg(t.Port)},
	}
}

// InlineProgram is the one-line program used when a service has no entry file.
// The port goes through int() so that digit strings with leading zeros stay valid.
func InlineProgram(service, port string) string {
	return fmt.Sprintf("import importlib; importlib.import_module(%s).main(port=int(%s))",
		strconv.Quote("src."+service+".main"), strconv.Quote(port))
}
