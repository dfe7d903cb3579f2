package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/katsuhira/adminlite/internal/admin/domain"
)

type cookieKeysRepo struct {
	db dbtx
}

const cookieKeyColumns = `id, kid, private_key_sealed, label, created_at, retired_at`

func (r *cookieKeysRepo) CreateCookieKey(ctx context.Context, key domain.CookieKey) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cookie_keys (id, kid, private_key_sealed, label, created_at, retired_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key.ID, key.Kid, key.PrivateKeySealed, mapStringNull(key.Label),
		key.CreatedAt.UTC(), mapOptionalTime(key.RetiredAt))
	return mapConstraint(err)
}

func (r *cookieKeysRepo) GetCookieKeyByKid(ctx context.Context, kid string) (domain.CookieKey, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cookieKeyColumns+` FROM cookie_keys WHERE kid = ?`, kid)
	return scanCookieKey(row)
}

func (r *cookieKeysRepo) ListCookieKeys(ctx context.Context) ([]domain.CookieKey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cookieKeyColumns+` FROM cookie_keys ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []domain.CookieKey
	for rows.Next() {
		var k domain.CookieKey
		var label sql.NullString
		var retiredAt sql.NullTime
		if err := rows.Scan(&k.ID, &k.Kid, &k.PrivateKeySealed, &label, &k.CreatedAt, &retiredAt); err != nil {
			return nil, err
		}
		k.Label = mapNullString(label)
		k.RetiredAt = mapNullTimePtr(retiredAt)
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *cookieKeysRepo) RetireCookieKey(ctx context.Context, kid string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cookie_keys SET retired_at = ? WHERE kid = ? AND retired_at IS NULL`,
		at.UTC(), kid)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanCookieKey(row *sql.Row) (domain.CookieKey, error) {
	var k domain.CookieKey
	var label sql.NullString
	var retiredAt sql.NullTime
	err := row.Scan(&k.ID, &k.Kid, &k.PrivateKeySealed, &label, &k.CreatedAt, &retiredAt)
	if err != nil {
		return domain.CookieKey{}, mapNotFound(err)
	}
	k.Label = mapNullString(label)
	k.RetiredAt = mapNullTimePtr(retiredAt)
	return k, nil
}
