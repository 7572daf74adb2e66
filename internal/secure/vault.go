package secure

import (
	"encoding/json"
	"fmt"
)

// Vault holds a generated batch of secret values sealed in a single
// enclave. Batch orchestration generates every value before any sink is
// written; the vault covers the window in between so the only plaintext
// copy is the short-lived one handed to each sink write.
type Vault struct {
	buf *SecureBuffer
}

// SealValues serializes the name to value map and seals it.
func SealValues(values map[string]string) (*Vault, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("sealing generated values: %w", err)
	}
	buf, err := NewSecureBuffer(data)
	if err != nil {
		return nil, err
	}
	return &Vault{buf: buf}, nil
}

// OpenValues decrypts the sealed batch and returns a fresh copy of the
// name to value map. The enclave plaintext is wiped before returning.
func (v *Vault) OpenValues() (map[string]string, error) {
	locked, err := v.buf.Open()
	if err != nil {
		return nil, fmt.Errorf("opening sealed values: %w", err)
	}
	defer locked.Destroy()

	var values map[string]string
	if err := json.Unmarshal(locked.Bytes(), &values); err != nil {
		return nil, fmt.Errorf("opening sealed values: %w", err)
	}
	return values, nil
}

// Destroy drops the sealed batch. Idempotent.
func (v *Vault) Destroy() {
	v.buf.Destroy()
}
