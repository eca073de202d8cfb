package probe

import (
	"context"
	"strings"

	wperrors "wifiprobe/internal/errors"
	"wifiprobe/internal/netstat"
	"wifiprobe/util"
)

// AssociationReader reports the network the host is associated with.
// wlan.Backend implements it.
type AssociationReader interface {
	CurrentSSID(ctx context.Context) (string, error)
}

// Checker is the verification contract a JoinProbe depends on.
type Checker interface {
	IsJoined(ctx context.Context, target string) (bool, error)
}

// Verifier confirms association after a join.  Either source may be
// nil; at least one should be set.
type Verifier struct {
	Association AssociationReader
	Connections netstat.Lister
}

// IsJoined reports whether the host is on target: the association
// reader names it, or some connected socket's remote address starts
// with it (for targets given as an address).  IsJoined only reads state.  A
// failed query is returned as a *errors.VerificationError and never
// read as "not joined".
func (v *Verifier) IsJoined(ctx context.Context, target string) (bool, error) {
	if v.Association != nil {
		ssid, err := v.Association.CurrentSSID(ctx)
		if err != nil {
			return false, &wperrors.VerificationError{Target: target, Err: err}
		}
		if ssid != "" && ssid == target {
			return true, nil
		}
	}

	if v.Connections != nil {
		conns, err := v.Connections.List(ctx)
		if err != nil {
			return false, &wperrors.VerificationError{Target: target, Err: err}
		}
		for _, c := range conns {
			if c.RemoteAddress == util.NotAvailable {
				continue
			}
			if strings.HasPrefix(c.RemoteAddress, target) {
				return true, nil
			}
		}
	}
	return false, nil
}
