package gate

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	wperrors "wifiprobe/internal/errors"
)

func hashOf(t *testing.T, pass string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(h)
}

func reader(s string) Reader {
	return func() ([]byte, error) { return []byte(s), nil }
}

func TestHashChecker(t *testing.T) {
	c, err := NewHashChecker(hashOf(t, "letmein") + "\n")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		pass    string
		wantErr bool
	}{
		{"letmein", false},
		{"LetMeIn", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.pass, func(t *testing.T) {
			err := c.Check([]byte(tt.pass))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check(%q) = %v", tt.pass, err)
			}
			if err != nil && !wperrors.Is(err, wperrors.ErrGateDenied) {
				t.Errorf("rejection should match ErrGateDenied, got %v", err)
			}
		})
	}
}

func TestNewHashChecker_Invalid(t *testing.T) {
	_, err := NewHashChecker("secure_password")
	var ce *wperrors.ConfigError
	if !wperrors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
	if ce.Field != "gate" || ce.Hint == "" {
		t.Errorf("unexpected error %+v", ce)
	}
}

func TestAuthorize(t *testing.T) {
	c, err := NewHashChecker(hashOf(t, "letmein"))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("granted", func(t *testing.T) {
		var out bytes.Buffer
		if err := Authorize(c, "", &out, reader("letmein")); err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(out.String(), DefaultPrompt) {
			t.Errorf("prompt = %q", out.String())
		}
	})

	t.Run("denied", func(t *testing.T) {
		err := Authorize(c, "pass? ", &bytes.Buffer{}, reader("nope"))
		if !wperrors.Is(err, wperrors.ErrGateDenied) {
			t.Errorf("err = %v, want ErrGateDenied", err)
		}
	})

	t.Run("read failure", func(t *testing.T) {
		boom := fmt.Errorf("tty gone")
		err := Authorize(c, "", &bytes.Buffer{}, func() ([]byte, error) { return nil, boom })
		if !wperrors.Is(err, boom) || wperrors.Is(err, wperrors.ErrGateDenied) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("no checker", func(t *testing.T) {
		var out bytes.Buffer
		called := false
		err := Authorize(nil, "", &out, func() ([]byte, error) { called = true; return nil, nil })
		if err != nil || called || out.Len() != 0 {
			t.Errorf("nil checker should admit silently: err=%v called=%v out=%q", err, called, out.String())
		}
	})
}

func TestCheckerFunc(t *testing.T) {
	c := CheckerFunc(func(p []byte) error {
		if string(p) == "ok" {
			return nil
		}
		return wperrors.ErrGateDenied
	})
	if err := Authorize(c, "", &bytes.Buffer{}, reader("ok")); err != nil {
		t.Error(err)
	}
}

func TestTerminalReader_Pipe(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	go func() {
		w.WriteString("s3cret\r\nignored\n") //nolint:errcheck
		w.Close()
	}()

	got, err := TerminalReader(r)()
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "s3cret" {
		t.Errorf("got %q", got)
	}
}
