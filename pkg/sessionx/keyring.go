package sessionx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/katsuhira/adminlite/pkg/cryptox"
	"github.com/katsuhira/adminlite/pkg/idx"
)

var (
	// ErrUnknownKey means the cookie references a key id the ring does
	// not hold, even after consulting the store.
	ErrUnknownKey = errors.New("sessionx: unknown key id")

	// ErrInvalidSession covers every other decode failure: malformed
	// token, bad signature, wrong issuer, expired.
	ErrInvalidSession = errors.New("sessionx: invalid session")
)

// KeyRecord is a key-ring entry as persisted. Key material is sealed
// before it reaches the store and is never logged.
type KeyRecord struct {
	ID               string
	Kid              string
	PrivateKeySealed []byte
	Label            string
	CreatedAt        time.Time
	RetiredAt        *time.Time
}

// Active reports whether the entry's activation window is still open.
func (r KeyRecord) Active() bool { return r.RetiredAt == nil }

// KeyStore is the minimal persistence interface the ring needs. Keeping
// it here avoids a dependency on the store package.
type KeyStore interface {
	// ListKeys returns every entry, retired ones included, so cookies
	// issued under old keys keep verifying.
	ListKeys(ctx context.Context) ([]KeyRecord, error)

	// CreateKey persists a new entry. Racing inserts of distinct entries
	// are tolerated; each stays addressable by its kid.
	CreateKey(ctx context.Context, rec KeyRecord) error

	// RetireKey closes an entry's activation window.
	RetireKey(ctx context.Context, kid string, at time.Time) error
}

// Options configures a KeyRing.
type Options struct {
	// Store persists key-ring entries across restarts. Required.
	Store KeyStore

	// Sealer protects private key material at rest. Required.
	Sealer *cryptox.Sealer

	// Issuer is the application identity string stamped into every
	// cookie and enforced on decode, so separate deployments do not
	// cross-decode each other's cookies.
	Issuer string
}

// KeyRing manages the durable signing keys behind session cookies. At any
// time at most one entry is current (used for new cookies); the rest stay
// loaded for verification until pruned externally.
type KeyRing struct {
	store  KeyStore
	sealer *cryptox.Sealer
	issuer string

	mu      sync.Mutex // guards current and the lazy-generate path
	current *signer
	keys    *keySet
}

// NewKeyRing loads all persisted entries and selects the current one. An
// empty store is fine; the first Issue call generates the first entry.
func NewKeyRing(ctx context.Context, opts Options) (*KeyRing, error) {
	if opts.Store == nil {
		return nil, errors.New("sessionx: Store is required")
	}
	if opts.Sealer == nil {
		return nil, errors.New("sessionx: Sealer is required")
	}
	if opts.Issuer == "" {
		return nil, errors.New("sessionx: Issuer is required")
	}

	kr := &KeyRing{
		store:  opts.Store,
		sealer: opts.Sealer,
		issuer: opts.Issuer,
		keys:   newKeySet(),
	}

	kr.mu.Lock()
	defer kr.mu.Unlock()
	if err := kr.reloadLocked(ctx); err != nil {
		return nil, err
	}
	return kr, nil
}

// Issue signs claims under the current key, generating and persisting one
// first if the ring is empty. Safe under concurrent first callers.
func (kr *KeyRing) Issue(ctx context.Context, claims Claims) (string, error) {
	s, err := kr.currentSigner(ctx)
	if err != nil {
		return "", err
	}
	token, err := s.sign(claims)
	if err != nil {
		return "", fmt.Errorf("sessionx: sign session: %w", err)
	}
	return token, nil
}

// Decode verifies a cookie value and returns its claims. Every failure
// maps to ErrUnknownKey or ErrInvalidSession; callers treat both as an
// anonymous request, never as a best-effort principal.
func (kr *KeyRing) Decode(ctx context.Context, cookieValue string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(kr.issuer),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(cookieValue, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing kid", ErrInvalidSession)
		}
		pub, err := kr.lookup(ctx, kid)
		if err != nil {
			return nil, err
		}
		return pub, nil
	})
	if err != nil {
		if errors.Is(err, ErrUnknownKey) {
			return Claims{}, ErrUnknownKey
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidSession
	}
	return *claims, nil
}

// Rotate generates a new entry, persists it, and closes the activation
// window of the previous current entry. Cookies issued under old entries
// keep verifying until they expire.
func (kr *KeyRing) Rotate(ctx context.Context) (string, error) {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	old := kr.current
	s, err := kr.generateLocked(ctx)
	if err != nil {
		return "", err
	}

	if old != nil {
		if err := kr.store.RetireKey(ctx, old.kid, time.Now().UTC()); err != nil {
			return "", fmt.Errorf("sessionx: retire key %s: %w", old.kid, err)
		}
	}

	kr.current = s
	return s.kid, nil
}

// Issuer returns the application identity string cookies are scoped to.
func (kr *KeyRing) Issuer() string { return kr.issuer }

// Len reports how many verification keys are loaded, retired entries
// included.
func (kr *KeyRing) Len() int { return kr.keys.len() }

// CurrentKid returns the kid new cookies are issued under, or "" while the
// ring is still empty.
func (kr *KeyRing) CurrentKid() string {
	kr.mu.Lock()
	defer kr.mu.Unlock()
	if kr.current == nil {
		return ""
	}
	return kr.current.kid
}

// lookup resolves a kid to its public key. On a miss it reloads from the
// store once, so cookies issued by another instance after a rotation still
// verify. A storage error here fails the lookup outright.
func (kr *KeyRing) lookup(ctx context.Context, kid string) (any, error) {
	if pub, ok := kr.keys.get(kid); ok {
		return pub, nil
	}

	kr.mu.Lock()
	err := kr.reloadLocked(ctx)
	kr.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if pub, ok := kr.keys.get(kid); ok {
		return pub, nil
	}
	return nil, ErrUnknownKey
}

// currentSigner returns the current signer, lazily generating the first
// entry. The mutex makes at most one in-process caller win the generate
// race; cross-process duplicates are tolerated since each entry stays
// independently addressable by kid and the latest created_at wins on the
// next reload.
func (kr *KeyRing) currentSigner(ctx context.Context) (*signer, error) {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	if kr.current != nil {
		return kr.current, nil
	}

	// Another instance may have created one since startup.
	if err := kr.reloadLocked(ctx); err != nil {
		return nil, err
	}
	if kr.current != nil {
		return kr.current, nil
	}

	return kr.generateLocked(ctx)
}

// reloadLocked loads every entry from the store into the key set and
// recomputes the current signer: the active entry with the latest
// created_at. Caller holds kr.mu.
func (kr *KeyRing) reloadLocked(ctx context.Context) error {
	records, err := kr.store.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("sessionx: load key ring: %w", err)
	}

	var currentRec *KeyRecord
	for i := range records {
		rec := &records[i]
		s, err := kr.openSigner(*rec)
		if err != nil {
			return err
		}
		kr.keys.add(s.kid, s.pub)

		if !rec.Active() {
			continue
		}
		if currentRec == nil ||
			rec.CreatedAt.After(currentRec.CreatedAt) ||
			(rec.CreatedAt.Equal(currentRec.CreatedAt) && rec.ID > currentRec.ID) {
			currentRec = rec
		}
	}

	if currentRec == nil {
		kr.current = nil
		return nil
	}
	s, err := kr.openSigner(*currentRec)
	if err != nil {
		return err
	}
	kr.current = s
	return nil
}

// generateLocked creates, seals, and persists a fresh entry and installs
// it as current. Caller holds kr.mu.
func (kr *KeyRing) generateLocked(ctx context.Context) (*signer, error) {
	kid, err := newKid()
	if err != nil {
		return nil, err
	}

	pemData, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}

	sealed, err := kr.sealer.Seal(pemData)
	if err != nil {
		return nil, fmt.Errorf("sessionx: seal key %s: %w", kid, err)
	}

	rec := KeyRecord{
		ID:               idx.New().String(),
		Kid:              kid,
		PrivateKeySealed: sealed,
		CreatedAt:        time.Now().UTC(),
	}
	if err := kr.store.CreateKey(ctx, rec); err != nil {
		return nil, fmt.Errorf("sessionx: persist key %s: %w", kid, err)
	}

	s, err := newSignerFromPEM(kid, pemData)
	if err != nil {
		return nil, err
	}
	kr.keys.add(s.kid, s.pub)
	kr.current = s
	return s, nil
}

// openSigner unseals a persisted entry back into a usable signer.
func (kr *KeyRing) openSigner(rec KeyRecord) (*signer, error) {
	pemData, err := kr.sealer.Open(rec.PrivateKeySealed)
	if err != nil {
		return nil, fmt.Errorf("sessionx: unseal key %s: %w", rec.Kid, err)
	}
	return newSignerFromPEM(rec.Kid, pemData)
}
