// Package gate is the optional access check run before any command.
//
// The gate is a convenience for shared machines, not a security
// boundary.  No secret lives in the binary: the operator supplies a
// bcrypt hash, and the gate compares the typed passphrase against it.
package gate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	wperrors "wifiprobe/internal/errors"
)

// DefaultPrompt is shown before reading the passphrase.
const DefaultPrompt = "Enter password to access network details: "

// Checker decides whether a passphrase grants access.  A rejection
// must match errors.ErrGateDenied.
type Checker interface {
	Check(pass []byte) error
}

// CheckerFunc adapts a function to [Checker].
type CheckerFunc func(pass []byte) error

// Check calls f.
func (f CheckerFunc) Check(pass []byte) error { return f(pass) }

// HashChecker accepts the passphrase whose bcrypt hash is Hash.
type HashChecker struct {
	Hash []byte
}

// NewHashChecker parses a bcrypt hash such as one produced by
// htpasswd -nbB.
func NewHashChecker(hash string) (*HashChecker, error) {
	h := []byte(strings.TrimSpace(hash))
	if _, err := bcrypt.Cost(h); err != nil {
		return nil, &wperrors.ConfigError{
			Field:   "gate",
			Message: "gate hash is not a bcrypt hash",
			Hint:    "generate one with: htpasswd -nbBC 10 '' <passphrase> | cut -d: -f2",
			Err:     err,
		}
	}
	return &HashChecker{Hash: h}, nil
}

// Check compares pass against the hash.
func (c *HashChecker) Check(pass []byte) error {
	err := bcrypt.CompareHashAndPassword(c.Hash, pass)
	switch {
	case err == nil:
		return nil
	case wperrors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return wperrors.ErrGateDenied
	default:
		return fmt.Errorf("%w: %v", wperrors.ErrGateDenied, err)
	}
}

// Reader returns one passphrase.
type Reader func() ([]byte, error)

// TerminalReader reads from f without echo when f is a terminal, and
// reads a single line otherwise so the gate also works with piped
// input.
func TerminalReader(f *os.File) Reader {
	return func() ([]byte, error) {
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			return term.ReadPassword(fd)
		}
		line, err := bufio.NewReader(f).ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, err
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}
}

// Authorize writes prompt to w, reads a passphrase and checks it.
// Nil c admits everyone without prompting.
func Authorize(c Checker, prompt string, w io.Writer, read Reader) error {
	if c == nil {
		return nil
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}
	fmt.Fprint(w, prompt)
	pass, err := read()
	fmt.Fprintln(w)
	if err != nil {
		return fmt.Errorf("reading passphrase: %w", err)
	}
	defer clear(pass)
	return c.Check(pass)
}
