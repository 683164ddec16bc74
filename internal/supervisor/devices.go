package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

// DeviceDiscoverer shells out to `flutter devices --machine` to enumerate
// attached targets and to `flutter emulators --launch` to boot one,
// satisfying engine.DeviceDiscoverer. Discover does not list bootable
// emulators; every descriptor it returns has IsBootable false.
type DeviceDiscoverer struct {
	flutterBin string
}

// NewDeviceDiscoverer constructs a discoverer using the flutter binary on
// PATH.
func NewDeviceDiscoverer() *DeviceDiscoverer {
	return &DeviceDiscoverer{flutterBin: "flutter"}
}

type rawDevice struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Platform   string `json:"platform"`
	Emulator   bool   `json:"emulator"`
}

// Discover runs `flutter devices --machine` and decodes its JSON array.
func (d *DeviceDiscoverer) Discover(ctx context.Context) ([]protocol.DeviceDescriptor, error) {
	if _, err := exec.LookPath(d.flutterBin); err != nil {
		return nil, ErrFlutterNotFound
	}
	out, err := exec.CommandContext(ctx, d.flutterBin, "devices", "--machine").Output()
	if err != nil {
		return nil, fmt.Errorf("supervisor: flutter devices: %w", err)
	}

	var raw []rawDevice
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("supervisor: decode devices: %w", err)
	}

	devices := make([]protocol.DeviceDescriptor, len(raw))
	for i, r := range raw {
		devices[i] = protocol.DeviceDescriptor{
			DeviceID:   r.ID,
			Name:       r.Name,
			Platform:   r.Platform,
			IsEmulator: r.Emulator,
			IsBootable: false,
		}
	}
	return devices, nil
}

// Boot launches an emulator/simulator by device id via `flutter emulators
// --launch <id>`.
func (d *DeviceDiscoverer) Boot(ctx context.Context, deviceID string) error {
	if _, err := exec.LookPath(d.flutterBin); err != nil {
		return ErrFlutterNotFound
	}
	if err := exec.CommandContext(ctx, d.flutterBin, "emulators", "--launch", deviceID).Run(); err != nil {
		return fmt.Errorf("supervisor: boot device %s: %w", deviceID, err)
	}
	return nil
}
