package secrets

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/models"
)

const selectColumns = `SELECT id, owner, platform, platform_username, email, secret_ciphertext FROM secrets`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, s *models.Secret) (int64, error) {
	query := `INSERT INTO secrets (owner, platform, platform_username, email, secret_ciphertext)
			VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, s.Owner, s.Platform, s.PlatformUsername, s.Email, s.Ciphertext)
	if err != nil {
		return 0, fmt.Errorf("failed to insert secret: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	s.ID = id
	return id, nil
}

func (r *SQLiteRepository) Import(ctx context.Context, s *models.Secret) error {
	query := `INSERT INTO secrets (id, owner, platform, platform_username, email, secret_ciphertext)
			VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.Owner, s.Platform, s.PlatformUsername, s.Email, s.Ciphertext)
	if err != nil {
		return fmt.Errorf("failed to import secret %d: %w", s.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) FindByPlatform(ctx context.Context, owner, platform string) ([]models.Secret, error) {
	return r.query(ctx, selectColumns+` WHERE owner = ? AND platform = ? ORDER BY id`, owner, platform)
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, owner string) ([]models.Secret, error) {
	return r.query(ctx, selectColumns+` WHERE owner = ? ORDER BY id`, owner)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Secret, error) {
	return r.query(ctx, selectColumns+` ORDER BY id`)
}

func (r *SQLiteRepository) ListPlatforms(ctx context.Context, owner string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT platform FROM secrets WHERE owner = ? ORDER BY platform`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select platforms: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, owner string, id int64, platformUsername, ciphertext string) error {
	query := `UPDATE secrets SET platform_username = ?, secret_ciphertext = ? WHERE id = ? AND owner = ?`
	res, err := r.db.ExecContext(ctx, query, platformUsername, ciphertext, id, owner)
	if err != nil {
		return fmt.Errorf("failed to update secret: %w", err)
	}
	return expectOne(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, owner string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM secrets WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}
	return expectOne(res)
}

func (r *SQLiteRepository) DeleteByOwner(ctx context.Context, owner string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM secrets WHERE owner = ?`, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to delete secrets of %s: %w", owner, err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM secrets`); err != nil {
		return fmt.Errorf("failed to delete secrets: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.Secret, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select secrets: %w", err)
	}
	defer rows.Close()

	var result []models.Secret
	for rows.Next() {
		var s models.Secret
		if err := rows.Scan(&s.ID, &s.Owner, &s.Platform, &s.PlatformUsername, &s.Email, &s.Ciphertext); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func expectOne(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}
