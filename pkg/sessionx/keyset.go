package sessionx

import (
	"crypto/ed25519"
	"sync"
)

// keySet holds the Ed25519 public verification keys for every key-ring
// entry seen so far, including retired ones. Thread-safe.
type keySet struct {
	mu  sync.RWMutex
	pub map[string]ed25519.PublicKey
}

func newKeySet() *keySet {
	return &keySet{pub: make(map[string]ed25519.PublicKey)}
}

func (k *keySet) add(kid string, pub ed25519.PublicKey) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub[kid] = pub
}

func (k *keySet) get(kid string) (ed25519.PublicKey, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	pub, ok := k.pub[kid]
	return pub, ok
}

func (k *keySet) len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub)
}
