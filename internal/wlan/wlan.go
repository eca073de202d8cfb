// Package wlan is the network-join collaborator.  It drives the host's
// own wireless tooling (nmcli, netsh, networksetup) to persist a
// profile, join a network by name, read the current association and
// list visible networks.
//
// Every backend mutates OS-level network configuration: saved profiles
// outlive the process, and repeated failed trials can leave the host's
// saved-network list polluted.  Profiles created here carry
// [ProfilePrefix] so they can be told apart and removed.
package wlan

import (
	"context"
	"runtime"
	"strconv"
	"strings"

	wperrors "wifiprobe/internal/errors"
	"wifiprobe/util"
)

// ProfilePrefix marks saved profiles created by wifiprobe.
const ProfilePrefix = "wifiprobe-"

// Network is one entry of a visible-network scan.
type Network struct {
	SSID     string
	Signal   int    // 0-100, -1 when the backend does not report it
	Security string // free-form, e.g. "WPA2"
}

// Profile is one saved network configuration.  Name is what the OS
// knows the profile by; every trial gets its own so concurrent trials
// never join with each other's key.
type Profile struct {
	Name string
	SSID string
	Key  string
}

// Backend joins and inspects wireless networks.  Implementations must
// be safe for concurrent use; the OS itself serialises the underlying
// association, so concurrent joins supersede one another.
type Backend interface {
	// Name identifies the backend in logs, e.g. "nmcli".
	Name() string

	// SaveProfile persists p.  Backends whose join command carries the
	// key may treat this as a no-op.
	SaveProfile(ctx context.Context, p Profile) error

	// RemoveProfile deletes the profile SaveProfile created.
	RemoveProfile(ctx context.Context, p Profile) error

	// Connect asks the OS to join p.SSID using profile p.  A join that
	// runs but does not associate (wrong key, out of range) is not an
	// error; callers verify association separately.  An error means
	// the attempt could not be made at all.
	Connect(ctx context.Context, p Profile) error

	// CurrentSSID returns the network the host is associated with, or
	// "" when it is not associated.
	CurrentSSID(ctx context.Context) (string, error)

	// Scan lists visible networks.
	Scan(ctx context.Context) ([]Network, error)
}

// ProfileReporter is implemented by backends that can name the saved
// profile behind the current association.  It tells a trial's own join
// apart from one made by a concurrent trial for the same network.
type ProfileReporter interface {
	ActiveProfile(ctx context.Context) (string, error)
}

// ForPlatform returns the backend for goos.  Unknown platforms get an
// [Unsupported] backend that fails every call.
func ForPlatform(goos string, r Runner, iface string) Backend {
	switch goos {
	case "linux":
		return &NMCLI{Runner: r, Interface: iface}
	case "windows":
		return &Netsh{Runner: r, Interface: iface}
	case "darwin":
		return &NetworkSetup{Runner: r, Interface: iface}
	default:
		return Unsupported{OS: goos}
	}
}

// Default returns the backend for the running OS using [ExecRunner].
// Commands are logged to logger at debug level; nil is allowed.
func Default(iface string, logger *util.Logger) Backend {
	return ForPlatform(runtime.GOOS, ExecRunner{Logger: logger}, iface)
}

// ProfileName is the saved-profile name for the candidate at index
// (0-based) of a run against ssid.
func ProfileName(ssid string, index int) string {
	return ProfilePrefix + ssid + "-" + strconv.Itoa(index+1)
}

// NewProfile returns the profile for the candidate at index.
func NewProfile(ssid, key string, index int) Profile {
	return Profile{Name: ProfileName(ssid, index), SSID: ssid, Key: key}
}

// ── Unsupported ──────────────────────────────────────────────────────

// Unsupported is the backend for platforms without wireless tooling.
// Every call returns an error wrapping errors.ErrUnsupported.
type Unsupported struct {
	OS string
}

func (u Unsupported) Name() string { return "unsupported" }

func (u Unsupported) SaveProfile(context.Context, Profile) error {
	return wperrors.Unsupported("save-profile", u.OS)
}

func (u Unsupported) RemoveProfile(context.Context, Profile) error {
	return wperrors.Unsupported("remove-profile", u.OS)
}

func (u Unsupported) Connect(context.Context, Profile) error {
	return wperrors.Unsupported("connect", u.OS)
}

func (u Unsupported) CurrentSSID(context.Context) (string, error) {
	return "", wperrors.Unsupported("current-ssid", u.OS)
}

func (u Unsupported) Scan(context.Context) ([]Network, error) {
	return nil, wperrors.Unsupported("scan", u.OS)
}

// ── shared parsing helpers ───────────────────────────────────────────

// keyValue splits "  Name   : value" lines as printed by netsh and
// networksetup.  ok is false when the line has no separator.
func keyValue(line, sep string) (key, value string, ok bool) {
	i := strings.Index(line, sep)
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+len(sep):]), true
}
