package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// ReviewHistoryRepository handles the append-only review audit log
type ReviewHistoryRepository struct {
	db *sqlx.DB
}

// NewReviewHistoryRepository creates a new repository instance
func NewReviewHistoryRepository(db *sqlx.DB) *ReviewHistoryRepository {
	return &ReviewHistoryRepository{db: db}
}

// InsertTx appends one history entry inside the review transaction.
func (r *ReviewHistoryRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, entry *models.ReviewHistoryEntry) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO review_history (
			id, card_id, quality, previous_interval, new_interval,
			previous_ease, new_ease, reviewed_at
		) VALUES (
			:id, :card_id, :quality, :previous_interval, :new_interval,
			:previous_ease, :new_ease, :reviewed_at
		)`,
		entry)
	if err != nil {
		return storeErr("insert review history", err)
	}
	return nil
}

// ListByCard returns a card's most recent history entries.
func (r *ReviewHistoryRepository) ListByCard(ctx context.Context, cardID string, limit int) ([]models.ReviewHistoryEntry, error) {
	var entries []models.ReviewHistoryEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM review_history
		WHERE card_id = $1
		ORDER BY reviewed_at DESC
		LIMIT $2`,
		cardID, limit)
	if err != nil {
		return nil, storeErr("list review history", err)
	}
	return entries, nil
}

// CountSince counts a database's reviews recorded at or after the given
// instant.
func (r *ReviewHistoryRepository) CountSince(ctx context.Context, ownerID, databaseID string, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM review_history h
		JOIN cards c ON h.card_id = c.id
		WHERE c.owner_id = $1 AND c.database_id = $2 AND h.reviewed_at >= $3`,
		ownerID, databaseID, since)
	if err != nil {
		return 0, storeErr("count reviews", err)
	}
	return count, nil
}

// AverageEase returns the mean post-review ease across a database's
// history, still on the x1000 scale. Databases with no reviews report the
// initial ease.
func (r *ReviewHistoryRepository) AverageEase(ctx context.Context, ownerID, databaseID string) (float64, error) {
	var avg float64
	err := r.db.GetContext(ctx, &avg, `
		SELECT COALESCE(AVG(h.new_ease), 2500)
		FROM review_history h
		JOIN cards c ON h.card_id = c.id
		WHERE c.owner_id = $1 AND c.database_id = $2`,
		ownerID, databaseID)
	if err != nil {
		return 0, storeErr("average ease", err)
	}
	return avg, nil
}
