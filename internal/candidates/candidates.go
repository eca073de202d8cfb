// Package candidates loads candidate keys, one per line.
package candidates

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	wperrors "wifiprobe/internal/errors"
)

// Stdin is the path that makes Load read standard input.
const Stdin = "-"

// maxLine bounds a single candidate line.
const maxLine = 1 << 20

// Load reads the candidate file at path.  Lines are trimmed and blank
// lines dropped; order and duplicates are kept.  Every failure is a
// *errors.ConfigError, and a missing file also matches
// errors.ErrNotFound.
func Load(path string) ([]string, error) {
	if path == Stdin {
		return read(os.Stdin, "stdin")
	}

	f, err := os.Open(path)
	if err != nil {
		if wperrors.Is(err, fs.ErrNotExist) {
			return nil, &wperrors.ConfigError{
				Field:   "try-passwords",
				Value:   path,
				Message: fmt.Sprintf("Password file '%s' not found.", path),
				Err:     wperrors.Join(wperrors.ErrNotFound, err),
			}
		}
		return nil, &wperrors.ConfigError{
			Field:   "try-passwords",
			Value:   path,
			Message: "cannot open candidate file",
			Err:     err,
		}
	}
	defer f.Close()
	return read(f, path)
}

// Read parses candidates from r with the same rules as Load.
func Read(r io.Reader) ([]string, error) {
	return read(r, "input")
}

func read(r io.Reader, name string) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLine)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &wperrors.ConfigError{
			Field:   "try-passwords",
			Value:   name,
			Message: "reading candidates failed",
			Err:     err,
		}
	}
	return out, nil
}
