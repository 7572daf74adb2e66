package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// SecureBuffer stores sensitive bytes in an encrypted memguard enclave.
// The plaintext only exists while an Open()ed LockedBuffer is alive.
//
// memguard enclaves have no destroy method of their own; the encrypted
// blob is safe to leave for the garbage collector. Destroy here just
// drops the reference and blocks further use. Call memguard.Purge() at
// process exit for full cleanup of session keys.
type SecureBuffer struct {
	enclave   *memguard.Enclave
	mu        sync.RWMutex
	destroyed bool
}

// NewSecureBuffer seals data into a protected memory region. memguard
// wipes the input slice as part of sealing, so callers must not reuse it.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		return nil, errors.New("cannot seal empty data")
	}
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}, nil
}

// Open decrypts the enclave into a locked buffer. The caller must call
// Destroy() on the returned LockedBuffer to wipe the plaintext:
//
//	locked, err := buf.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
//	use(locked.Bytes())
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return nil, errors.New("secure buffer destroyed")
	}
	return s.enclave.Open()
}

// Destroy blocks further use of the buffer. Idempotent; Open after
// Destroy returns an error rather than panicking.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}
	s.enclave = nil
	s.destroyed = true
}
