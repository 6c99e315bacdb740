// Package session holds the passphrase for the current unlocked session.
// The passphrase lives only in process memory: it is set on login/unlock,
// read by every encrypt/decrypt call, and wiped on logout. It must never
// reach durable storage, so the holder keeps it in an unexported field
// that cannot be accidentally serialized alongside the config.
package session

import (
	"sync"

	"github.com/inkwell-app/inkwell/internal/common"
)

// Session is the volatile passphrase holder. The zero value is locked.
type Session struct {
	mu         sync.RWMutex
	passphrase []byte
}

func New() *Session {
	return &Session{}
}

// Set unlocks the session with the given passphrase.
func (s *Session) Set(passphrase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.passphrase)
	s.passphrase = []byte(passphrase)
}

// Passphrase returns the session passphrase, or common.ErrSessionLocked
// when none is set. Callers must not cache derived keys beyond a single
// encrypt/decrypt operation.
func (s *Session) Passphrase() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.passphrase) == 0 {
		return "", common.ErrSessionLocked
	}
	return string(s.passphrase), nil
}

// Unlocked reports whether a passphrase is present.
func (s *Session) Unlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passphrase) > 0
}

// Clear wipes the passphrase. Called on logout and shutdown.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.passphrase)
	s.passphrase = nil
}
