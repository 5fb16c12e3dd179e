package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/quietlane/voicegate/internal/server/domain"
)

type whitelistRepo struct {
	db dbtx
}

func (r *whitelistRepo) IsWhitelisted(ctx context.Context, githubID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM whitelist WHERE github_id = ?`, githubID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *whitelistRepo) Add(ctx context.Context, e domain.WhitelistEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO whitelist (github_id, github_username, created_at) VALUES (?, ?, ?)`,
		e.GithubID, mapStringNull(e.GithubUsername), e.CreatedAt)
	return mapConstraint(err)
}

func (r *whitelistRepo) Remove(ctx context.Context, githubID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM whitelist WHERE github_id = ?`, githubID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *whitelistRepo) List(ctx context.Context) ([]domain.WhitelistEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT github_id, github_username, created_at FROM whitelist
		 ORDER BY created_at DESC, github_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.WhitelistEntry
	for rows.Next() {
		var (
			e        domain.WhitelistEntry
			username sql.NullString
		)
		if err := rows.Scan(&e.GithubID, &username, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.GithubUsername = mapNullString(username)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *whitelistRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM whitelist`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
