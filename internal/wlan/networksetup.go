package wlan

import (
	"context"
	"fmt"
	"strings"

	wperrors "wifiprobe/internal/errors"
)

const defaultDarwinInterface = "en0"

// NetworkSetup drives macOS through networksetup(8).  Joining with a
// key also adds the network to the preferred list, so SaveProfile has
// nothing to do and profiles are known by SSID only.
type NetworkSetup struct {
	Runner    Runner
	Interface string
}

func (n *NetworkSetup) Name() string { return "networksetup" }

func (n *NetworkSetup) device() string {
	if n.Interface != "" {
		return n.Interface
	}
	return defaultDarwinInterface
}

func (n *NetworkSetup) SaveProfile(context.Context, Profile) error { return nil }

func (n *NetworkSetup) RemoveProfile(ctx context.Context, p Profile) error {
	if _, err := n.Runner.Run(ctx, "networksetup", "-removepreferredwirelessnetwork", n.device(), p.SSID); err != nil {
		return fmt.Errorf("removing preferred network: %w", err)
	}
	return nil
}

// Connect joins p.SSID.  networksetup exits 0 even when the join fails
// and reports the reason on stdout instead.
func (n *NetworkSetup) Connect(ctx context.Context, p Profile) error {
	out, err := n.Runner.Run(ctx, "networksetup", "-setairportnetwork", n.device(), p.SSID, p.Key)
	if err != nil {
		return fmt.Errorf("joining: %w", err)
	}
	// "Failed to join network" and "Could not find network" are
	// failed joins; only a rejected device is a failed command.
	if msg := strings.TrimSpace(string(out)); strings.Contains(msg, "is not a Wi-Fi interface") {
		return fmt.Errorf("joining: %s", msg)
	}
	return nil
}

func (n *NetworkSetup) CurrentSSID(ctx context.Context) (string, error) {
	out, err := n.Runner.Run(ctx, "networksetup", "-getairportnetwork", n.device())
	if err != nil {
		return "", fmt.Errorf("reading association: %w", err)
	}
	return parseAirportNetwork(string(out)), nil
}

// Scan is not offered: macOS no longer ships a supported command-line
// scanner.
func (n *NetworkSetup) Scan(context.Context) ([]Network, error) {
	return nil, wperrors.Unsupported("scan", "darwin")
}

// parseAirportNetwork reads "Current Wi-Fi Network: <ssid>".  Any other
// answer means the host is not associated.
func parseAirportNetwork(out string) string {
	for _, line := range strings.Split(out, "\n") {
		k, v, ok := keyValue(line, ": ")
		if ok && strings.HasPrefix(k, "Current") && strings.HasSuffix(k, "Network") {
			return v
		}
	}
	return ""
}
