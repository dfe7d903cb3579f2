package domain

import "time"

// CookieKey is a session-signing key as stored in the key ring table.
// Private key material is sealed before storage and never serialized to
// logs. Entries are immutable after creation except for closure of the
// activation window (RetiredAt), and are retained so cookies issued under
// old keys keep verifying until they expire.
type CookieKey struct {
	ID               string // ULID
	Kid              string // key identifier embedded in issued cookies
	PrivateKeySealed []byte // AES-256-GCM sealed Ed25519 PKCS8 PEM
	Label            string // optional human-readable tag
	CreatedAt        time.Time
	RetiredAt        *time.Time // nil = activation window still open
}

// Active reports whether the key may be used for new cookie issuance.
func (k *CookieKey) Active() bool { return k.RetiredAt == nil }
