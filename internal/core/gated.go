package core

import (
	"context"
	"io"

	"wifiprobe/internal/gate"
)

// GatedMode asks for the access passphrase before running Inner.
type GatedMode struct {
	Inner   Mode
	Checker gate.Checker
	Prompt  io.Writer
	Read    gate.Reader
}

// Run checks the passphrase and runs Inner only when it is accepted.
// A rejection is returned as errors.ErrGateDenied.
func (m *GatedMode) Run(ctx context.Context) error {
	if err := gate.Authorize(m.Checker, gate.DefaultPrompt, m.Prompt, m.Read); err != nil {
		return err
	}
	return m.Inner.Run(ctx)
}
