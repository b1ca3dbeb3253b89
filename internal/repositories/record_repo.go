package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/passguard/internal/database"
	"github.com/BradenHooton/passguard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecordRepository stores credential records. Every query is scoped to the
// owning user.
type RecordRepository struct {
	pool *pgxpool.Pool
}

func NewRecordRepository(db *database.DB) *RecordRepository {
	return &RecordRepository{pool: db.Pool}
}

const recordColumns = `id, user_id, site, login, password_encrypted, notes, created_at, updated_at`

func scanRecordRow(scanner rowScanner) (*models.Record, error) {
	var rec models.Record
	err := scanner.Scan(
		&rec.ID, &rec.UserID, &rec.Site, &rec.Login, &rec.PasswordEncrypted,
		&rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &rec, nil
}

func scanRecordRows(rows pgx.Rows) ([]*models.Record, error) {
	defer rows.Close()

	records := make([]*models.Record, 0)
	for rows.Next() {
		rec, err := scanRecordRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return records, nil
}

// Create inserts rec. An empty ID is filled with a new UUID.
func (r *RecordRepository) Create(ctx context.Context, rec *models.Record) (*models.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query := `
		INSERT INTO records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.UserID, rec.Site, rec.Login, rec.PasswordEncrypted,
		rec.Notes, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", database.MapPostgresError(err))
	}
	return rec, nil
}

// ListByUser returns the user's records, newest first.
func (r *RecordRepository) ListByUser(ctx context.Context, userID string) ([]*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", database.MapPostgresError(err))
	}
	return scanRecordRows(rows)
}

func (r *RecordRepository) GetByID(ctx context.Context, userID, id string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1 AND user_id = $2`
	return scanRecordRow(r.pool.QueryRow(ctx, query, id, userID))
}

// Update replaces the mutable fields of rec.
func (r *RecordRepository) Update(ctx context.Context, rec *models.Record) (*models.Record, error) {
	rec.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE records
		SET site = $3, login = $4, password_encrypted = $5, notes = $6, updated_at = $7
		WHERE id = $1 AND user_id = $2
		RETURNING ` + recordColumns

	return scanRecordRow(r.pool.QueryRow(ctx, query,
		rec.ID, rec.UserID, rec.Site, rec.Login, rec.PasswordEncrypted, rec.Notes, rec.UpdatedAt,
	))
}

func (r *RecordRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", database.MapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
