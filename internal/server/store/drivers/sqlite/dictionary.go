package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/quietlane/voicegate/internal/server/domain"
)

type userDictionaryRepo struct {
	db dbtx
}

func (r *userDictionaryRepo) ListByUser(ctx context.Context, userID int64) ([]domain.UserDictionaryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, pattern, replacement, created_at FROM user_dictionary
		 WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.UserDictionaryEntry
	for rows.Next() {
		var e domain.UserDictionaryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Pattern, &e.Replacement, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *userDictionaryRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_dictionary WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

func (r *userDictionaryRepo) Create(ctx context.Context, e domain.UserDictionaryEntry) (domain.UserDictionaryEntry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO user_dictionary (user_id, pattern, replacement, created_at)
		 VALUES (?, ?, ?, ?)`,
		e.UserID, e.Pattern, e.Replacement, e.CreatedAt)
	if err != nil {
		return domain.UserDictionaryEntry{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.UserDictionaryEntry{}, err
	}
	e.ID = id
	return e, nil
}

func (r *userDictionaryRepo) Delete(ctx context.Context, userID, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_dictionary WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type globalDictionaryRepo struct {
	db dbtx
}

func (r *globalDictionaryRepo) List(ctx context.Context) ([]domain.GlobalDictionaryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, pattern, replacement, created_by, created_at FROM global_dictionary
		 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.GlobalDictionaryEntry
	for rows.Next() {
		var (
			e         domain.GlobalDictionaryEntry
			createdBy sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Pattern, &e.Replacement, &createdBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.CreatedBy = mapNullInt64Ptr(createdBy)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *globalDictionaryRepo) Create(ctx context.Context, e domain.GlobalDictionaryEntry) (domain.GlobalDictionaryEntry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO global_dictionary (pattern, replacement, created_by, created_at)
		 VALUES (?, ?, ?, ?)`,
		e.Pattern, e.Replacement, mapOptionalInt64(e.CreatedBy), e.CreatedAt)
	if err != nil {
		return domain.GlobalDictionaryEntry{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.GlobalDictionaryEntry{}, err
	}
	e.ID = id
	return e, nil
}

func (r *globalDictionaryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM global_dictionary WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
