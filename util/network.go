package util

import (
	"net"
	"strconv"
)

// NotAvailable stands in for an address a socket does not have yet,
// such as the remote end of a listening socket.
const NotAvailable = "N/A"

// FormatAddr returns "ip:port", bracketing IPv6 literals.  An empty ip
// yields [NotAvailable].
func FormatAddr(ip string, port uint32) string {
	if ip == "" {
		return NotAvailable
	}
	return net.JoinHostPort(ip, strconv.FormatUint(uint64(port), 10))
}
