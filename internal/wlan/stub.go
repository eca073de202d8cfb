package wlan

import (
	"context"
	"sync"
)

var (
	_ Backend         = (*Stub)(nil)
	_ ProfileReporter = (*Stub)(nil)
)

// Stub is an in-memory Backend.  A join succeeds when the key matches
// Keys[ssid]; FailKeys makes saving a profile fail for a key.  Like
// nmcli, Connect joins with the key stored under the profile's name
// and falls back to the profile's own key when none is saved.
type Stub struct {
	Keys     map[string]string
	FailKeys map[string]error
	Networks []Network
	ScanErr  error
	StateErr error

	mu       sync.Mutex
	current  string
	active   string
	profiles map[string]Profile
	joins    int
}

// NewStub returns a Stub for which key is the correct key of ssid.
func NewStub(ssid, key string, networks ...Network) *Stub {
	return &Stub{Keys: map[string]string{ssid: key}, Networks: networks}
}

func (s *Stub) Name() string { return "stub" }

func (s *Stub) SaveProfile(_ context.Context, p Profile) error {
	if err := s.FailKeys[p.Key]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profiles == nil {
		s.profiles = make(map[string]Profile)
	}
	s.profiles[p.Name] = p
	return nil
}

func (s *Stub) RemoveProfile(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, p.Name)
	return nil
}

// Connect associates with p.SSID when the key is correct and
// otherwise leaves the current association as it was.
func (s *Stub) Connect(ctx context.Context, p Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joins++
	key := p.Key
	if saved, ok := s.profiles[p.Name]; ok {
		key = saved.Key
	}
	if want, ok := s.Keys[p.SSID]; ok && want == key {
		s.current, s.active = p.SSID, p.Name
	}
	return nil
}

func (s *Stub) CurrentSSID(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StateErr != nil {
		return "", s.StateErr
	}
	return s.current, nil
}

// ActiveProfile names the profile behind the current association.
func (s *Stub) ActiveProfile(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StateErr != nil {
		return "", s.StateErr
	}
	return s.active, nil
}

func (s *Stub) Scan(context.Context) ([]Network, error) {
	return s.Networks, s.ScanErr
}

// Joins returns how many Connect calls reached the stub.
func (s *Stub) Joins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joins
}

// Profiles returns how many profiles are currently saved.
func (s *Stub) Profiles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}
