// Package netstat takes read-only snapshots of the host's inet socket
// table.  It is the connection-enumeration collaborator consumed by the
// verifier and by --list.
package netstat

import (
	"context"
	"fmt"
	"syscall"

	psnet "github.com/shirou/gopsutil/v4/net"

	"wifiprobe/util"
)

// Protocol is the transport and address family of a socket.
type Protocol string

const (
	TCP     Protocol = "tcp"
	TCP6    Protocol = "tcp6"
	UDP     Protocol = "udp"
	UDP6    Protocol = "udp6"
	Unknown Protocol = "?"
)

// Status is the kernel's socket state, e.g. ESTABLISHED or LISTEN.
// Datagram sockets report "NONE".
type Status string

// Connection is one row of the socket table.
type Connection struct {
	LocalAddress  string
	RemoteAddress string // util.NotAvailable when unconnected
	Protocol      Protocol
	Status        Status
	PID           int32
}

// Lister returns a snapshot of the current socket table.
type Lister interface {
	List(ctx context.Context) ([]Connection, error)
}

// ListerFunc adapts a plain function to [Lister].
type ListerFunc func(ctx context.Context) ([]Connection, error)

// List calls f.
func (f ListerFunc) List(ctx context.Context) ([]Connection, error) { return f(ctx) }

// System reads the live socket table through gopsutil.
type System struct{}

// List returns every inet (v4 and v6, tcp and udp) socket.
func (System) List(ctx context.Context) ([]Connection, error) {
	stats, err := psnet.ConnectionsWithContext(ctx, "inet")
	if err != nil {
		return nil, fmt.Errorf("reading socket table: %w", err)
	}
	out := make([]Connection, 0, len(stats))
	for _, s := range stats {
		out = append(out, fromStat(s))
	}
	return out, nil
}

func fromStat(s psnet.ConnectionStat) Connection {
	status := s.Status
	if status == "" {
		status = "NONE"
	}
	return Connection{
		LocalAddress:  util.FormatAddr(s.Laddr.IP, s.Laddr.Port),
		RemoteAddress: util.FormatAddr(s.Raddr.IP, s.Raddr.Port),
		Protocol:      protocolOf(s.Family, s.Type),
		Status:        Status(status),
		PID:           s.Pid,
	}
}

func protocolOf(family, sockType uint32) Protocol {
	v6 := family == uint32(syscall.AF_INET6)
	switch sockType {
	case uint32(syscall.SOCK_STREAM):
		if v6 {
			return TCP6
		}
		return TCP
	case uint32(syscall.SOCK_DGRAM):
		if v6 {
			return UDP6
		}
		return UDP
	}
	return Unknown
}
