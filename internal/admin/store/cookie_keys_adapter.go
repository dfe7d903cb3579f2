package store

import (
	"context"
	"time"

	"github.com/katsuhira/adminlite/internal/admin/domain"
	"github.com/katsuhira/adminlite/pkg/sessionx"
)

// KeyStoreAdapter adapts a Store to the sessionx.KeyStore interface so the
// sessionx package can persist key-ring entries without depending on the
// domain package.
type KeyStoreAdapter struct {
	store Store
}

// NewKeyStoreAdapter wraps store as a sessionx.KeyStore.
func NewKeyStoreAdapter(store Store) *KeyStoreAdapter {
	return &KeyStoreAdapter{store: store}
}

// ListKeys returns every key-ring entry, retired ones included.
func (a *KeyStoreAdapter) ListKeys(ctx context.Context) ([]sessionx.KeyRecord, error) {
	keys, err := a.store.CookieKeys().ListCookieKeys(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]sessionx.KeyRecord, len(keys))
	for i, key := range keys {
		records[i] = sessionx.KeyRecord{
			ID:               key.ID,
			Kid:              key.Kid,
			PrivateKeySealed: key.PrivateKeySealed,
			Label:            key.Label,
			CreatedAt:        key.CreatedAt,
			RetiredAt:        key.RetiredAt,
		}
	}
	return records, nil
}

// CreateKey persists a new key-ring entry.
func (a *KeyStoreAdapter) CreateKey(ctx context.Context, rec sessionx.KeyRecord) error {
	return a.store.CookieKeys().CreateCookieKey(ctx, domain.CookieKey{
		ID:               rec.ID,
		Kid:              rec.Kid,
		PrivateKeySealed: rec.PrivateKeySealed,
		Label:            rec.Label,
		CreatedAt:        rec.CreatedAt,
		RetiredAt:        rec.RetiredAt,
	})
}

// RetireKey closes an entry's activation window.
func (a *KeyStoreAdapter) RetireKey(ctx context.Context, kid string, at time.Time) error {
	return a.store.CookieKeys().RetireCookieKey(ctx, kid, at)
}
