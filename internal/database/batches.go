package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// BatchRepository handles database operations for batches
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository creates a new repository instance
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create inserts a new batch.
func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO batches (
			id, owner_id, database_id, batch_number, total_words,
			words_learned, is_active, is_completed, created_at, updated_at
		) VALUES (
			:id, :owner_id, :database_id, :batch_number, :total_words,
			:words_learned, :is_active, :is_completed, :created_at, :updated_at
		)`,
		batch)
	if err != nil {
		return storeErr("create batch", err)
	}
	return nil
}

// GetTx returns a batch by id inside a transaction.
func (r *BatchRepository) GetTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Batch, error) {
	var batch models.Batch
	err := tx.GetContext(ctx, &batch, "SELECT * FROM batches WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, models.ErrBatchNotFound, "get batch")
	}
	return &batch, nil
}

// GetActive returns a database's active batch, or ErrBatchNotFound when
// the database has none (unbatched or terminal).
func (r *BatchRepository) GetActive(ctx context.Context, databaseID string) (*models.Batch, error) {
	var batch models.Batch
	err := r.db.GetContext(ctx, &batch,
		"SELECT * FROM batches WHERE database_id = $1 AND is_active = $2",
		databaseID, true)
	if err != nil {
		return nil, notFound(err, models.ErrBatchNotFound, "get active batch")
	}
	return &batch, nil
}

// ListByDatabase returns an owner's batches in activation order.
func (r *BatchRepository) ListByDatabase(ctx context.Context, ownerID, databaseID string) ([]models.Batch, error) {
	var batches []models.Batch
	err := r.db.SelectContext(ctx, &batches, `
		SELECT * FROM batches
		WHERE owner_id = $1 AND database_id = $2
		ORDER BY batch_number ASC`,
		ownerID, databaseID)
	if err != nil {
		return nil, storeErr("list batches", err)
	}
	return batches, nil
}

// ListActive returns every active batch across databases, for the
// maintenance reconciliation pass.
func (r *BatchRepository) ListActive(ctx context.Context) ([]models.Batch, error) {
	var batches []models.Batch
	err := r.db.SelectContext(ctx, &batches,
		"SELECT * FROM batches WHERE is_active = $1 ORDER BY created_at ASC", true)
	if err != nil {
		return nil, storeErr("list active batches", err)
	}
	return batches, nil
}

// UpdateProgressTx stores the recomputed learned-word count.
func (r *BatchRepository) UpdateProgressTx(ctx context.Context, tx *sqlx.Tx, id string, wordsLearned int, now time.Time) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE batches SET words_learned = $1, updated_at = $2 WHERE id = $3",
		wordsLearned, now, id); err != nil {
		return storeErr("update batch progress", err)
	}
	return nil
}

// CompleteTx marks a batch completed and inactive.
func (r *BatchRepository) CompleteTx(ctx context.Context, tx *sqlx.Tx, id string, now time.Time) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE batches SET is_active = $1, is_completed = $2, updated_at = $3
		WHERE id = $4`,
		false, true, now, id); err != nil {
		return storeErr("complete batch", err)
	}
	return nil
}

// ActivateNextTx activates the lowest-numbered pending batch of a
// database. It reports whether one remained.
func (r *BatchRepository) ActivateNextTx(ctx context.Context, tx *sqlx.Tx, databaseID string, now time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE batches SET is_active = $1, updated_at = $2
		WHERE id = (
			SELECT id FROM batches
			WHERE database_id = $3 AND is_active = $4 AND is_completed = $5
			ORDER BY batch_number ASC
			LIMIT 1
		)`,
		true, now, databaseID, false, false)
	if err != nil {
		return false, storeErr("activate next batch", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("activate next batch", err)
	}
	return n == 1, nil
}

// DeleteByDatabaseTx removes every batch of a database. Cards must be
// deleted first; they reference batches.
func (r *BatchRepository) DeleteByDatabaseTx(ctx context.Context, tx *sqlx.Tx, ownerID, databaseID string) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM batches WHERE owner_id = $1 AND database_id = $2",
		ownerID, databaseID); err != nil {
		return storeErr("delete batches", err)
	}
	return nil
}
