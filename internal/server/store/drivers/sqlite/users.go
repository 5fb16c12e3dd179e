package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/quietlane/voicegate/internal/server/domain"
	"github.com/quietlane/voicegate/internal/server/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, github_id, github_username, github_avatar, is_admin, created_at, last_login_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByGithubID(ctx context.Context, githubID string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, githubID)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (github_id, github_username, github_avatar, is_admin, created_at, last_login_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.GithubID,
		mapStringNull(u.GithubUsername),
		mapStringNull(u.GithubAvatar),
		u.IsAdmin,
		u.CreatedAt,
		nullTime(u.LastLoginAt),
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	u.ID = id
	return u, nil
}

func (r *usersRepo) TouchLogin(ctx context.Context, id int64, username, avatar string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET github_username = ?, github_avatar = ?, last_login_at = ? WHERE id = ?`,
		mapStringNull(username),
		mapStringNull(avatar),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_admin = ? WHERE id = ?`, isAdmin, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u           domain.User
		username    sql.NullString
		avatar      sql.NullString
		lastLoginAt sql.NullTime
	)
	err := row.Scan(&u.ID, &u.GithubID, &username, &avatar, &u.IsAdmin, &u.CreatedAt, &lastLoginAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.GithubUsername = mapNullString(username)
	u.GithubAvatar = mapNullString(avatar)
	u.LastLoginAt = mapNullTimePtr(lastLoginAt)
	return u, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// requireAffected turns a zero-row UPDATE into store.ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
