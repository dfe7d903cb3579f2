package sqlite

import (
	"context"
	"database/sql"

	"github.com/katsuhira/adminlite/internal/admin/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, display_name, password_hash, is_admin, created_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM app_users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM app_users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO app_users (id, username, display_name, password_hash, is_admin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, mapStringNull(u.DisplayName), u.PasswordHash, u.IsAdmin, u.CreatedAt.UTC())
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE app_users SET password_hash = ? WHERE id = ?`, newHash, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) UpdateDisplayName(ctx context.Context, userID string, displayName string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE app_users SET display_name = ? WHERE id = ?`,
		mapStringNull(displayName), userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM app_users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM app_users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var displayName sql.NullString
	err := row.Scan(&u.ID, &u.Username, &displayName, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.DisplayName = mapNullString(displayName)
	return u, nil
}

func scanUserRow(rows *sql.Rows) (domain.User, error) {
	var u domain.User
	var displayName sql.NullString
	err := rows.Scan(&u.ID, &u.Username, &displayName, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.DisplayName = mapNullString(displayName)
	return u, nil
}

// requireAffected maps zero-row updates/deletes to ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
