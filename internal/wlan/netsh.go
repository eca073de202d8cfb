package wlan

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// profileXML is a WPA2-Personal WLAN profile as accepted by
// "netsh wlan add profile".
const profileXML = `<?xml version="1.0"?>
<WLANProfile xmlns="http://www.microsoft.com/networking/WLAN/profile/v1">
	<name>%s</name>
	<SSIDConfig><SSID><name>%s</name></SSID></SSIDConfig>
	<connectionType>ESS</connectionType>
	<connectionMode>manual</connectionMode>
	<MSM><security>
		<authEncryption>
			<authentication>WPA2PSK</authentication>
			<encryption>AES</encryption>
			<useOneX>false</useOneX>
		</authEncryption>
		<sharedKey>
			<keyType>passPhrase</keyType>
			<protected>false</protected>
			<keyMaterial>%s</keyMaterial>
		</sharedKey>
	</security></MSM>
</WLANProfile>
`

// Netsh drives the Windows WLAN service through "netsh wlan".
type Netsh struct {
	Runner    Runner
	Interface string // optional interface name, e.g. "Wi-Fi"
}

func (n *Netsh) Name() string { return "netsh" }

// SaveProfile writes a temporary profile document and imports it.
// Each call uses its own file so concurrent trials never share one.
func (n *Netsh) SaveProfile(ctx context.Context, p Profile) error {
	doc := fmt.Sprintf(profileXML, xmlEscape(p.Name), xmlEscape(p.SSID), xmlEscape(p.Key))

	f, err := os.CreateTemp("", "wifiprobe-*.xml")
	if err != nil {
		return fmt.Errorf("creating profile file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(doc); err != nil {
		f.Close()
		return fmt.Errorf("writing profile file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing profile file: %w", err)
	}

	args := []string{"wlan", "add", "profile", "filename=" + f.Name(), "user=current"}
	if n.Interface != "" {
		args = append(args, "interface="+n.Interface)
	}
	if _, err := n.Runner.Run(ctx, "netsh", args...); err != nil {
		return fmt.Errorf("adding profile: %w", err)
	}
	return nil
}

func (n *Netsh) RemoveProfile(ctx context.Context, p Profile) error {
	if _, err := n.Runner.Run(ctx, "netsh", "wlan", "delete", "profile", "name="+p.Name); err != nil {
		return fmt.Errorf("removing profile %q: %w", p.Name, err)
	}
	return nil
}

func (n *Netsh) Connect(ctx context.Context, p Profile) error {
	args := []string{"wlan", "connect", "name=" + p.Name, "ssid=" + p.SSID}
	if n.Interface != "" {
		args = append(args, "interface="+n.Interface)
	}
	if _, err := n.Runner.Run(ctx, "netsh", args...); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	return nil
}

func (n *Netsh) CurrentSSID(ctx context.Context) (string, error) {
	out, err := n.Runner.Run(ctx, "netsh", "wlan", "show", "interfaces")
	if err != nil {
		return "", fmt.Errorf("reading association: %w", err)
	}
	ssid, _ := parseNetshInterfaces(string(out))
	return ssid, nil
}

// ActiveProfile names the profile of the first connected interface.
func (n *Netsh) ActiveProfile(ctx context.Context) (string, error) {
	out, err := n.Runner.Run(ctx, "netsh", "wlan", "show", "interfaces")
	if err != nil {
		return "", fmt.Errorf("reading active profile: %w", err)
	}
	_, profile := parseNetshInterfaces(string(out))
	return profile, nil
}

func (n *Netsh) Scan(ctx context.Context) ([]Network, error) {
	out, err := n.Runner.Run(ctx, "netsh", "wlan", "show", "networks")
	if err != nil {
		return nil, fmt.Errorf("scanning: %w", err)
	}
	return parseNetshNetworks(string(out)), nil
}

// parseNetshInterfaces returns the SSID and profile of the first
// connected interface in "netsh wlan show interfaces" output.
func parseNetshInterfaces(out string) (ssid, profile string) {
	connected := false
	for _, line := range strings.Split(out, "\n") {
		k, v, ok := keyValue(line, ":")
		if !ok {
			continue
		}
		switch k {
		case "Name":
			if connected && ssid != "" {
				return ssid, profile
			}
			connected, ssid, profile = false, "", ""
		case "State":
			connected = strings.EqualFold(v, "connected")
		case "SSID":
			if connected {
				ssid = v
			}
		case "Profile":
			if connected {
				profile = v
			}
		}
	}
	if !connected {
		return "", ""
	}
	return ssid, profile
}

// parseNetshNetworks collects "SSID n : name" entries, ignoring BSSID
// lines, and attaches the Authentication line that follows each.
func parseNetshNetworks(out string) []Network {
	var res []Network
	for _, line := range strings.Split(out, "\n") {
		k, v, ok := keyValue(line, ":")
		if !ok {
			continue
		}
		switch {
		case strings.HasPrefix(k, "SSID") && !strings.Contains(k, "BSSID"):
			if v == "" {
				continue
			}
			res = append(res, Network{SSID: v, Signal: -1})
		case k == "Authentication" && len(res) > 0:
			res[len(res)-1].Security = v
		}
	}
	return res
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s)) //nolint:errcheck // bytes.Buffer never fails
	return b.String()
}
