package entrypoint

import (
	"errors"
	"io/fs"
	"slices"
	"strings"
	"testing"
	"testing/fstest"
)

var target = Target{Service: "gaode_weather", Port: "8000", Interpreter: ".venv/bin/python"}

func TestResolve_Enhanced(t *testing.T) {
	tests := []struct {
		name     string
		files    fstest.MapFS
		wantKind Kind
		wantArgs []string
		warn     bool
	}{
		{
			name:     "main.py",
			files:    fstest.MapFS{"main.py": {}},
			wantKind: KindDirectScript,
			wantArgs: []string{".venv/bin/python", "src/gaode_weather/main.py", "--port=8000"},
		},
		{
			name:     "main.py beats __main__.py",
			files:    fstest.MapFS{"main.py": {}, "__main__.py": {}},
			wantKind: KindDirectScript,
			wantArgs: []string{".venv/bin/python", "src/gaode_weather/main.py", "--port=8000"},
		},
		{
			name:     "__main__.py only",
			files:    fstest.MapFS{"__main__.py": {}, "tools.py": {}},
			wantKind: KindModule,
			wantArgs: []string{".venv/bin/python", "-m", "src.gaode_weather", "--port=8000"},
		},
		{
			name:     "neither",
			files:    fstest.MapFS{"server.py": {}},
			wantKind: KindDynamicImport,
			warn:     true,
		},
		{
			name:     "main.py directory does not count",
			files:    fstest.MapFS{"main.py/x.py": {}},
			wantKind: KindDynamicImport,
			warn:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, err := Resolve(Enhanced, tt.files, target)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if ep.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", ep.Kind, tt.wantKind)
			}
			if tt.wantArgs != nil && !slices.Equal(ep.Args, tt.wantArgs) {
				t.Errorf("Args = %q, want %q", ep.Args, tt.wantArgs)
			}
			if (ep.Warning != "") != tt.warn {
				t.Errorf("Warning = %q, want warning=%v", ep.Warning, tt.warn)
			}
		})
	}
}

func TestResolve_DynamicImportProgram(t *testing.T) {
	ep, err := Resolve(Enhanced, fstest.MapFS{}, Target{Service: "think", Port: "0080", Interpreter: "py"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ep.Args) != 3 || ep.Args[0] != "py" || ep.Args[1] != "-c" {
		t.Fatalf("Args = %q", ep.Args)
	}
	want := `import importlib; importlib.import_module("src.think.main").main(port=int("0080"))`
	if ep.Args[2] != want {
		t.Errorf("program = %s\nwant      %s", ep.Args[2], want)
	}
}

func TestResolve_Baseline(t *testing.T) {
	// Baseline never looks at the directory.
	for _, files := range []fstest.MapFS{{}, {"main.py": {}}, {"__main__.py": {}}} {
		ep, err := Resolve(Baseline, files, Target{Service: "clean_html", Port: "9000", Interpreter: "python3"})
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"python3", "-m", "src.clean_html.main", "--port=9000"}
		if ep.Kind != KindBaseline || !slices.Equal(ep.Args, want) {
			t.Errorf("got %q %q, want %q %q", ep.Kind, ep.Args, KindBaseline, want)
		}
	}
}

func TestResolve_NoMatch(t *testing.T) {
	rules := []Rule{{Kind: KindDirectScript, Match: hasFile("main.py"), Build: directScript}}

	_, err := Resolve(rules, fstest.MapFS{}, target)
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestResolve_FirstMatchWins(t *testing.T) {
	var calls []string
	rule := func(name string, match bool) Rule {
		return Rule{
			Kind: Kind(name),
			Match: func(fs.FS) bool {
				calls = append(calls, name)
				return match
			},
			Build: func(Target) Entrypoint { return Entrypoint{Kind: Kind(name)} },
		}
	}

	ep, err := Resolve([]Rule{rule("a", false), rule("b", true), rule("c", true)}, fstest.MapFS{}, target)
	if err != nil {
		t.Fatal(err)
	}
	if ep.Kind != "b" {
		t.Errorf("Kind = %q, want b", ep.Kind)
	}
	if got := strings.Join(calls, ","); got != "a,b" {
		t.Errorf("evaluated %s, want a,b", got)
	}
}
