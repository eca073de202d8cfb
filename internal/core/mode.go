// Package core is the orchestration layer.  It composes the socket
// table, wireless backends and the trial engine into complete
// operational modes, and provides a builder that selects the right mode
// from a Config.
//
// Architecture layers (bottom → top):
//
//	netstat, wlan  →  probe  →  trial  →  core  →  cmd (CLI)
package core

import "context"

// Mode is one complete wifiprobe operation (list, wifi, or
// try-passwords).  Each mode owns its lifecycle from setup to the final
// report.
type Mode interface {
	Run(ctx context.Context) error
}
