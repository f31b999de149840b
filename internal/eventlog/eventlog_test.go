package eventlog

import (
	"errors"
	"testing"
)

func TestEmitLaunched(t *testing.T) {
	fl := NewFakeEventLog()
	l := Launch{
		Service:    "gaode_weather",
		Port:       "8000",
		Entrypoint: "direct-script",
		Command:    []string{"python", "src/gaode_weather/main.py", "--port=8000"},
		LogPath:    "logs/gaode_weather_8000.log",
	}

	if err := EmitLaunched(fl, l, 4321); err != nil {
		t.Fatal(err)
	}

	entries := fl.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	f := entries[0].Fields
	want := map[string]string{
		FieldEvent:      EventLaunched,
		FieldService:    "gaode_weather",
		FieldPort:       "8000",
		FieldPID:        "4321",
		FieldEntrypoint: "direct-script",
		FieldCommand:    "python src/gaode_weather/main.py --port=8000",
		FieldLog:        "logs/gaode_weather_8000.log",
	}
	for k, v := range want {
		if f[k] != v {
			t.Errorf("%s = %q, want %q", k, f[k], v)
		}
	}
}

func TestEmitFailed(t *testing.T) {
	fl := NewFakeEventLog()
	if err := EmitFailed(fl, Launch{Service: "think", Port: "1"}, errors.New("exec format error")); err != nil {
		t.Fatal(err)
	}

	f := fl.Entries()[0].Fields
	if f[FieldEvent] != EventFailed || f[FieldError] != "exec format error" {
		t.Errorf("fields = %v", f)
	}
	if _, ok := f[FieldPID]; ok {
		t.Error("failed launch carries a pid")
	}
}

func TestFakeEventLog_Closed(t *testing.T) {
	fl := NewFakeEventLog()
	fl.Close()
	if err := fl.Write("x", nil); err == nil {
		t.Error("write after close succeeded")
	}
}

func TestDiscard(t *testing.T) {
	if err := EmitLaunched(Discard, Launch{}, 1); err != nil {
		t.Error(err)
	}
}
