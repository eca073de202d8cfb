package core

import (
	"context"
	"fmt"

	wperrors "wifiprobe/internal/errors"
	"wifiprobe/internal/report"
	"wifiprobe/internal/wlan"
	"wifiprobe/util"
)

// ScanMode lists the wireless networks visible to the host.
type ScanMode struct {
	Backend  wlan.Backend
	Reporter *report.Reporter
	Logger   *util.Logger
}

// Run scans once.  On a platform without a scanner it says so once and
// lists nothing rather than failing.
func (m *ScanMode) Run(ctx context.Context) error {
	m.Logger.Verbose("scanning with %s", m.Backend.Name())

	nets, err := m.Backend.Scan(ctx)
	if err != nil {
		if wperrors.IsUnsupported(err) {
			m.Logger.Verbose("%v", err)
			m.Reporter.Notice("Listing Wi-Fi networks is not supported on this platform.")
			return nil
		}
		return fmt.Errorf("scanning networks: %w", err)
	}
	m.Reporter.Networks(nets)
	return nil
}
