//go:build !unix

package wlan

// Privileged is always true where there is no euid to check; the
// backend reports permission problems itself.
func Privileged() bool { return true }
