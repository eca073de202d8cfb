package core

import (
	"context"
	"fmt"

	"wifiprobe/internal/netstat"
	"wifiprobe/internal/report"
	"wifiprobe/util"
)

// ListMode prints the host's socket table.
type ListMode struct {
	Lister   netstat.Lister
	Reporter *report.Reporter
	Logger   *util.Logger
}

// Run takes one snapshot and prints it.
func (m *ListMode) Run(ctx context.Context) error {
	conns, err := m.Lister.List(ctx)
	if err != nil {
		return fmt.Errorf("listing connections: %w", err)
	}
	m.Logger.Verbose("%d socket(s) in table", len(conns))
	m.Reporter.Connections(conns)
	return nil
}
