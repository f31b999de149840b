package systemd

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/coreos/go-systemd/v22/unit"
	godbus "github.com/godbus/dbus/v5"
)

// UnitName is a systemd unit name including its suffix.
type UnitName string

func (n UnitName) String() string { return string(n) }

// UnitNameFor derives a transient service unit name from a launch name.
// Characters systemd does not accept are escaped.
func UnitNameFor(name string) UnitName {
	return UnitName("startsvc-" + unit.UnitNameEscape(name) + ".service")
}

// TransientSpec describes a transient service unit.
type TransientSpec struct {
	Unit        UnitName
	Description string
	Command     []string
	WorkingDir  string

	// Output is the file descriptor that receives stdout and stderr.
	// Negative means the journal.
	Output int
}

// units is the subset of the go-systemd connection the backend needs.
type units interface {
	StartTransientUnitContext(ctx context.Context, name string, mode string, properties []dbus.Property, ch chan<- string) (int, error)
	GetUnitTypePropertiesContext(ctx context.Context, unit string, unitType string) (map[string]any, error)
	Close()
}

// transientProperties builds the D-Bus properties for spec.
func transientProperties(spec TransientSpec) []dbus.Property {
	props := []dbus.Property{
		dbus.PropExecStart(spec.Command, false),
		dbus.PropDescription(spec.Description),
		dbus.PropType("exec"),
		{
			Name:  "StandardInput",
			Value: godbus.MakeVariant("null"),
		},
		// Drop the unit once it stops so the same name can be launched again.
		{
			Name:  "CollectMode",
			Value: godbus.MakeVariant("inactive-or-failed"),
		},
	}

	if spec.WorkingDir != "" {
		props = append(props, dbus.Property{
			Name:  "WorkingDirectory",
			Value: godbus.MakeVariant(spec.WorkingDir),
		})
	}

	if spec.Output >= 0 {
		fd := godbus.UnixFD(spec.Output)
		props = append(props,
			dbus.Property{Name: "StandardOutputFileDescriptor", Value: godbus.MakeVariant(fd)},
			dbus.Property{Name: "StandardErrorFileDescriptor", Value: godbus.MakeVariant(fd)},
		)
	} else {
		props = append(props,
			dbus.Property{Name: "StandardOutput", Value: godbus.MakeVariant("journal")},
			dbus.Property{Name: "StandardError", Value: godbus.MakeVariant("journal")},
		)
	}

	return props
}

// startTransient starts the unit and waits for the start job to finish.
func startTransient(ctx context.Context, conn units, spec TransientSpec) error {
	resultChan := make(chan string, 1)
	_, err := conn.StartTransientUnitContext(ctx, spec.Unit.String(), "fail", transientProperties(spec), resultChan)
	if err != nil {
		return fmt.Errorf("starting transient unit: %w", err)
	}

	select {
	case result := <-resultChan:
		if result != "done" {
			return fmt.Errorf("start job for %s: %s", spec.Unit, result)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// mainPID reads the MainPID property of a service unit.
func mainPID(ctx context.Context, conn units, name UnitName) (int, error) {
	props, err := conn.GetUnitTypePropertiesContext(ctx, name.String(), "Service")
	if err != nil {
		return 0, fmt.Errorf("getting unit properties: %w", err)
	}
	pid, ok := props["MainPID"].(uint32)
	if !ok || pid == 0 {
		return 0, fmt.Errorf("unit %s has no main process", name)
	}
	return int(pid), nil
}

// description is what `systemctl --user status` shows for the unit.
func description(command []string) string {
	return "startsvc: " + strings.Join(command, " ")
}
