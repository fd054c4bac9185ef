// Package secure keeps secret values out of plain process memory between the
// moment they leave the credential store and the moment they are needed.
package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Buffer holds one secret value in a memguard enclave: encrypted at rest in
// memory and, where the OS permits, protected from swapping by mlock.
type Buffer struct {
	enclave *memguard.Enclave

	mu        sync.RWMutex
	destroyed bool
}

// NewBuffer seals value into a protected buffer. The input string remains in
// the caller's hands; pass it to the garbage collector as soon as possible.
// The empty string is representable (memguard cannot seal zero bytes, so it
// is tracked without an enclave).
func NewBuffer(value string) *Buffer {
	if value == "" {
		return &Buffer{}
	}
	return &Buffer{enclave: memguard.NewEnclave([]byte(value))}
}

// Open decrypts the value into a locked buffer, or returns nil for an empty
// or destroyed buffer. The caller must call Destroy() on a non-nil
// LockedBuffer once done with the plaintext.
func (b *Buffer) Open() (*memguard.LockedBuffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed || b.enclave == nil {
		return nil, nil
	}
	return b.enclave.Open()
}

// String decrypts the value, copies it out, and wipes the intermediate
// buffer. Use only at the point the plaintext genuinely has to leave
// protected memory, like assembling a child-process environment.
func (b *Buffer) String() (string, error) {
	locked, err := b.Open()
	if err != nil {
		return "", err
	}
	if locked == nil {
		return "", nil
	}
	defer locked.Destroy()
	return string(locked.Bytes()), nil
}

// Destroy marks the buffer unusable. Idempotent; after Destroy, Open returns
// an empty buffer. The encrypted enclave itself needs no explicit wipe.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyed = true
}
