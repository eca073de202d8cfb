package wlan

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	wperrors "wifiprobe/internal/errors"
)

// nmcli exit codes that mean "the activation ran and did not come up",
// which is a failed join rather than a failed command.
const (
	nmcliExitTimeout          = 3
	nmcliExitActivationFailed = 4

	nmcliWifiType = "802-11-wireless"
)

// NMCLI drives NetworkManager through its command-line client.
type NMCLI struct {
	Runner    Runner
	Interface string // optional device, e.g. "wlan0"
}

func (n *NMCLI) Name() string { return "nmcli" }

// SaveProfile updates the key of the wifiprobe profile p.Name,
// creating the profile on first use.
func (n *NMCLI) SaveProfile(ctx context.Context, p Profile) error {
	_, err := n.Runner.Run(ctx, "nmcli", "connection", "modify", "id", p.Name,
		"wifi-sec.key-mgmt", "wpa-psk", "wifi-sec.psk", p.Key)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	ifname := n.Interface
	if ifname == "" {
		ifname = "*"
	}
	_, err = n.Runner.Run(ctx, "nmcli", "connection", "add",
		"type", "wifi", "con-name", p.Name, "ifname", ifname, "ssid", p.SSID,
		"connection.autoconnect", "no",
		"wifi-sec.key-mgmt", "wpa-psk", "wifi-sec.psk", p.Key)
	if err != nil {
		return fmt.Errorf("saving profile %q: %w", p.Name, err)
	}
	return nil
}

func (n *NMCLI) RemoveProfile(ctx context.Context, p Profile) error {
	if _, err := n.Runner.Run(ctx, "nmcli", "connection", "delete", "id", p.Name); err != nil {
		return fmt.Errorf("removing profile %q: %w", p.Name, err)
	}
	return nil
}

// Connect activates the saved profile.  The key is already stored in
// the profile.
func (n *NMCLI) Connect(ctx context.Context, p Profile) error {
	args := []string{"connection", "up", "id", p.Name}
	if n.Interface != "" {
		args = append(args, "ifname", n.Interface)
	}
	_, err := n.Runner.Run(ctx, "nmcli", args...)
	if err == nil || ctx.Err() != nil {
		return err
	}
	switch wperrors.CommandExitCode(err) {
	case nmcliExitTimeout, nmcliExitActivationFailed:
		return nil
	}
	return fmt.Errorf("activating %q: %w", p.SSID, err)
}

// ActiveProfile names the active wireless connection, on Interface
// when one is set.
func (n *NMCLI) ActiveProfile(ctx context.Context) (string, error) {
	out, err := n.Runner.Run(ctx, "nmcli", "-t", "-f", "NAME,TYPE,DEVICE", "connection", "show", "--active")
	if err != nil {
		return "", fmt.Errorf("reading active connection: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := splitTerse(line)
		if len(fields) < 3 || fields[1] != nmcliWifiType {
			continue
		}
		if n.Interface == "" || fields[2] == n.Interface {
			return fields[0], nil
		}
	}
	return "", nil
}

func (n *NMCLI) CurrentSSID(ctx context.Context) (string, error) {
	out, err := n.Runner.Run(ctx, "nmcli", "-t", "-f", "ACTIVE,SSID", "device", "wifi")
	if err != nil {
		return "", fmt.Errorf("reading association: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := splitTerse(line)
		if len(fields) >= 2 && fields[0] == "yes" {
			return fields[1], nil
		}
	}
	return "", nil
}

func (n *NMCLI) Scan(ctx context.Context) ([]Network, error) {
	out, err := n.Runner.Run(ctx, "nmcli", "-t", "-f", "SSID,SIGNAL,SECURITY",
		"device", "wifi", "list", "--rescan", "auto")
	if err != nil {
		return nil, fmt.Errorf("scanning: %w", err)
	}
	return parseNMCLIScan(string(out)), nil
}

// parseNMCLIScan reads "SSID:SIGNAL:SECURITY" terse lines, skipping
// hidden networks and keeping the first (strongest) entry per SSID.
func parseNMCLIScan(out string) []Network {
	var res []Network
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		fields := splitTerse(line)
		if len(fields) < 3 || fields[0] == "" || seen[fields[0]] {
			continue
		}
		seen[fields[0]] = true
		signal, err := strconv.Atoi(fields[1])
		if err != nil {
			signal = -1
		}
		res = append(res, Network{SSID: fields[0], Signal: signal, Security: fields[2]})
	}
	return res
}

// splitTerse splits one line of nmcli -t output on unescaped colons and
// removes the backslash escapes.
func splitTerse(line string) []string {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return nil
	}
	var (
		fields []string
		cur    strings.Builder
		esc    bool
	)
	for _, r := range line {
		switch {
		case esc:
			cur.WriteRune(r)
			esc = false
		case r == '\\':
			esc = true
		case r == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, cur.String())
}
