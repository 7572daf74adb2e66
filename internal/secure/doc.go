// Package secure keeps generated secret values protected in memory between
// the moment they are produced and the moment they are delivered to a sink.
//
// It wraps the memguard library. Values held in a SecureBuffer or Vault are:
//
//   - Encrypted at rest in memory (XSalsa20Poly1305)
//   - Protected from swapping via mlock where the platform allows it
//   - Wiped when destroyed
//
// Typical use during a populate run:
//
//	vault, err := secure.SealValues(values)
//	if err != nil {
//	    return err
//	}
//	defer vault.Destroy()
//
//	// Later, per sink write:
//	opened, err := vault.OpenValues()
//
// If mlock is unavailable (RLIMIT_MEMLOCK on Linux, for example) memguard
// degrades to ordinary allocations, so sealing never fails outright on
// constrained systems.
//
// This protects core dumps and swap from leaking plaintext. It does not
// defend against a root-level attacker inspecting the live process.
package secure
