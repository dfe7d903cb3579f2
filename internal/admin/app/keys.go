package app

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/katsuhira/adminlite/internal/admin/store"
	"github.com/katsuhira/adminlite/pkg/cryptox"
	"github.com/katsuhira/adminlite/pkg/sessionx"
)

// initSessionRing loads (or creates) the master key, builds the sealer
// over it, and opens the persistent session key ring. Signing keys live in
// the database sealed with the master key, so sessions survive restarts
// and are shared across instances pointing at the same database.
func initSessionRing(ctx context.Context, cfg Config, db store.Store, logger *slog.Logger) (*sessionx.KeyRing, error) {
	secret, created, err := loadMasterKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	if created {
		logger.Info("generated new master key file", "path", cfg.MasterKeyFile)
	}

	sealer, err := cryptox.NewSealer(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sealer: %w", err)
	}

	ring, err := sessionx.NewKeyRing(ctx, sessionx.Options{
		Store:  store.NewKeyStoreAdapter(db),
		Sealer: sealer,
		Issuer: cfg.AppName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session key ring: %w", err)
	}

	logger.Info("session key ring ready", "issuer", cfg.AppName, "keys", ring.Len())
	return ring, nil
}

// loadMasterKey resolves the sealing secret. An inline key wins; otherwise
// the key file is read, and created with fresh random material when it
// does not exist yet.
func loadMasterKey(cfg Config) (secret []byte, created bool, err error) {
	if cfg.MasterKey != "" {
		return []byte(cfg.MasterKey), false, nil
	}

	data, err := os.ReadFile(cfg.MasterKeyFile)
	if err == nil {
		secret = bytes.TrimSpace(data)
		if len(secret) == 0 {
			return nil, false, fmt.Errorf("master key file %s is empty", cfg.MasterKeyFile)
		}
		return secret, false, nil
	}
	if !os.IsNotExist(err) {
		return nil, false, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, false, err
	}
	encoded := []byte(hex.EncodeToString(raw))

	if err := os.WriteFile(cfg.MasterKeyFile, append(encoded, '\n'), 0o600); err != nil {
		return nil, false, err
	}
	return encoded, true, nil
}
