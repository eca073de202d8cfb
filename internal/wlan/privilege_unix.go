//go:build unix

package wlan

import "golang.org/x/sys/unix"

// Privileged reports whether the process runs as root.  nmcli can
// still work without it when polkit grants the calling user network
// control.
func Privileged() bool { return unix.Geteuid() == 0 }
