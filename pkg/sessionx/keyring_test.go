package sessionx_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/katsuhira/adminlite/pkg/cryptox"
	"github.com/katsuhira/adminlite/pkg/sessionx"
	"github.com/stretchr/testify/require"
)

// memKeyStore is an in-memory KeyStore for codec tests; the sqlite-backed
// implementation is exercised in the store driver tests.
type memKeyStore struct {
	mu   sync.Mutex
	recs []sessionx.KeyRecord
}

func (m *memKeyStore) ListKeys(context.Context) ([]sessionx.KeyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sessionx.KeyRecord, len(m.recs))
	copy(out, m.recs)
	return out, nil
}

func (m *memKeyStore) CreateKey(_ context.Context, rec sessionx.KeyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memKeyStore) RetireKey(_ context.Context, kid string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.recs {
		if m.recs[i].Kid == kid && m.recs[i].RetiredAt == nil {
			t := at
			m.recs[i].RetiredAt = &t
		}
	}
	return nil
}

func newTestRing(t *testing.T, store sessionx.KeyStore) *sessionx.KeyRing {
	t.Helper()
	sealer, err := cryptox.NewSealer([]byte("test-master-key"))
	require.NoError(t, err)
	kr, err := sessionx.NewKeyRing(context.Background(), sessionx.Options{
		Store:  store,
		Sealer: sealer,
		Issuer: "adminlite-test",
	})
	require.NoError(t, err)
	return kr
}

func TestIssueDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kr := newTestRing(t, &memKeyStore{})

	claims := sessionx.NewClaims("alice", "Alice", "admin", "adminlite-test",
		sessionx.DefaultSessionTTL, time.Now().UTC())
	cookie, err := kr.Issue(ctx, claims)
	require.NoError(t, err)
	require.NotEmpty(t, cookie)

	got, err := kr.Decode(ctx, cookie)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "Alice", got.DisplayName)
	require.Equal(t, "admin", got.Role)
}

func TestDisplayNameFallsBackToUsername(t *testing.T) {
	t.Parallel()

	claims := sessionx.NewClaims("bob", "", "user", "x", time.Hour, time.Now().UTC())
	require.Equal(t, "bob", claims.DisplayName)
}

func TestDecodeRejectsTamper(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kr := newTestRing(t, &memKeyStore{})

	claims := sessionx.NewClaims("alice", "", "user", "adminlite-test", time.Hour, time.Now().UTC())
	cookie, err := kr.Issue(ctx, claims)
	require.NoError(t, err)

	// Flip one byte in the payload segment.
	parts := strings.Split(cookie, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[3] == 'A' {
		payload[3] = 'B'
	} else {
		payload[3] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = kr.Decode(ctx, tampered)
	require.Error(t, err)
}

func TestDecodeRejectsExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kr := newTestRing(t, &memKeyStore{})

	stale := sessionx.NewClaims("alice", "", "user", "adminlite-test",
		time.Minute, time.Now().UTC().Add(-time.Hour))
	cookie, err := kr.Issue(ctx, stale)
	require.NoError(t, err)

	_, err = kr.Decode(ctx, cookie)
	require.ErrorIs(t, err, sessionx.ErrInvalidSession)
}

func TestDecodeRejectsForeignIssuer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memKeyStore{}
	kr := newTestRing(t, store)

	// Same key ring, wrong application identity in the claims.
	claims := sessionx.NewClaims("alice", "", "user", "some-other-app", time.Hour, time.Now().UTC())
	cookie, err := kr.Issue(ctx, claims)
	require.NoError(t, err)

	_, err = kr.Decode(ctx, cookie)
	require.ErrorIs(t, err, sessionx.ErrInvalidSession)
}

func TestDecodeGarbage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kr := newTestRing(t, &memKeyStore{})

	for _, v := range []string{"", "x", "a.b.c", "not a jwt at all"} {
		_, err := kr.Decode(ctx, v)
		require.Error(t, err, "cookie %q", v)
	}
}

func TestRotationKeepsOldCookiesValid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kr := newTestRing(t, &memKeyStore{})

	claims := sessionx.NewClaims("alice", "", "user", "adminlite-test", time.Hour, time.Now().UTC())
	oldCookie, err := kr.Issue(ctx, claims)
	require.NoError(t, err)
	oldKid := kr.CurrentKid()

	newKid, err := kr.Rotate(ctx)
	require.NoError(t, err)
	require.NotEqual(t, oldKid, newKid)
	require.Equal(t, newKid, kr.CurrentKid())

	// Both keys stay loaded for verification.
	require.Equal(t, 2, kr.Len())

	// Outstanding cookie under the retired key still verifies.
	got, err := kr.Decode(ctx, oldCookie)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)

	// New cookies are issued under the new key.
	newCookie, err := kr.Issue(ctx, claims)
	require.NoError(t, err)
	require.NotEqual(t, oldCookie, newCookie)
	_, err = kr.Decode(ctx, newCookie)
	require.NoError(t, err)
}

func TestRingSurvivesRestart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memKeyStore{}

	first := newTestRing(t, store)
	claims := sessionx.NewClaims("alice", "", "user", "adminlite-test", time.Hour, time.Now().UTC())
	cookie, err := first.Issue(ctx, claims)
	require.NoError(t, err)

	// A fresh ring over the same store must verify the old cookie and
	// keep issuing under the same key.
	second := newTestRing(t, store)
	got, err := second.Decode(ctx, cookie)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, first.CurrentKid(), second.CurrentKid())
}

func TestCrossInstanceRotation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memKeyStore{}

	a := newTestRing(t, store)
	b := newTestRing(t, store)

	// a rotates; b has never seen the new key but must still decode a
	// cookie issued under it by reconsulting the store.
	_, err := a.Rotate(ctx)
	require.NoError(t, err)

	claims := sessionx.NewClaims("alice", "", "user", "adminlite-test", time.Hour, time.Now().UTC())
	cookie, err := a.Issue(ctx, claims)
	require.NoError(t, err)

	got, err := b.Decode(ctx, cookie)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
}

func TestConcurrentFirstIssue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &memKeyStore{}
	kr := newTestRing(t, store)

	claims := sessionx.NewClaims("alice", "", "user", "adminlite-test", time.Hour, time.Now().UTC())

	var wg sync.WaitGroup
	cookies := make([]string, 8)
	for i := range cookies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := kr.Issue(ctx, claims)
			require.NoError(t, err)
			cookies[i] = c
		}(i)
	}
	wg.Wait()

	// One winner: a single entry was generated in-process.
	recs, err := store.ListKeys(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	for _, c := range cookies {
		_, err := kr.Decode(ctx, c)
		require.NoError(t, err)
	}
}

func TestUnknownKid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	storeA := &memKeyStore{}
	storeB := &memKeyStore{}
	a := newTestRing(t, storeA)
	b := newTestRing(t, storeB)

	claims := sessionx.NewClaims("alice", "", "user", "adminlite-test", time.Hour, time.Now().UTC())
	cookie, err := a.Issue(ctx, claims)
	require.NoError(t, err)

	// b's ring never held a's key.
	_, err = b.Decode(ctx, cookie)
	require.ErrorIs(t, err, sessionx.ErrUnknownKey)
}
