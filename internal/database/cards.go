package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// CardRepository handles database operations for cards
type CardRepository struct {
	db *sqlx.DB
}

// NewCardRepository creates a new repository instance
func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardInsert = `
	INSERT INTO cards (
		id, owner_id, database_id, signature, word, translations,
		part_of_speech, lemma, example_sentence, ordinal_position,
		state, ease_factor, interval_days, repetitions, lapses,
		due_at, last_reviewed_at, batch_id, created_at, updated_at
	) VALUES (
		:id, :owner_id, :database_id, :signature, :word, :translations,
		:part_of_speech, :lemma, :example_sentence, :ordinal_position,
		:state, :ease_factor, :interval_days, :repetitions, :lapses,
		:due_at, :last_reviewed_at, :batch_id, :created_at, :updated_at
	)
`

// Create inserts a new card. A unique-constraint violation on
// (owner_id, database_id, signature) surfaces as ErrDuplicateSignature.
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	if _, err := r.db.NamedExecContext(ctx, cardInsert, card); err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateSignature
		}
		return storeErr("create card", err)
	}
	return nil
}

// GetByID returns the card with the given id scoped to its owner. Unknown
// ids and foreign owners both surface as ErrCardNotFound.
func (r *CardRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Card, error) {
	var card models.Card
	err := r.db.GetContext(ctx, &card,
		"SELECT * FROM cards WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return nil, notFound(err, models.ErrCardNotFound, "get card")
	}
	return &card, nil
}

// ScheduleGuard is the schedule tuple a guarded update must still match.
type ScheduleGuard struct {
	Repetitions  int
	EaseFactor   int
	IntervalDays int
	Lapses       int
}

// UpdateScheduleTx persists the card's scheduling fields only if the row
// still matches the guard read beforehand. It reports false when a
// concurrent reviewer won the race and nothing was written.
func (r *CardRepository) UpdateScheduleTx(ctx context.Context, tx *sqlx.Tx, card *models.Card, guard ScheduleGuard) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE cards SET
			state = $1,
			ease_factor = $2,
			interval_days = $3,
			repetitions = $4,
			lapses = $5,
			due_at = $6,
			last_reviewed_at = $7,
			updated_at = $8
		WHERE id = $9
			AND repetitions = $10
			AND ease_factor = $11
			AND interval_days = $12
			AND lapses = $13`,
		card.State,
		card.EaseFactor,
		card.IntervalDays,
		card.Repetitions,
		card.Lapses,
		card.DueAt,
		card.LastReviewedAt,
		card.UpdatedAt,
		card.ID,
		guard.Repetitions,
		guard.EaseFactor,
		guard.IntervalDays,
		guard.Lapses,
	)
	if err != nil {
		return false, storeErr("update card schedule", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("update card schedule", err)
	}
	return n == 1, nil
}

// ListDue returns non-new cards whose due timestamp has passed, oldest
// due first. Re-querying always reflects current state; there is no
// cursor.
func (r *CardRepository) ListDue(ctx context.Context, ownerID, databaseID string, now time.Time, limit int) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.SelectContext(ctx, &cards, `
		SELECT * FROM cards
		WHERE owner_id = $1 AND database_id = $2
			AND state != 'new' AND due_at <= $3
		ORDER BY due_at ASC
		LIMIT $4`,
		ownerID, databaseID, now, limit)
	if err != nil {
		return nil, storeErr("list due cards", err)
	}
	return cards, nil
}

// ListNew returns up to limit new cards in source-text order. When
// batchID is set, only that batch's cards are introduced.
func (r *CardRepository) ListNew(ctx context.Context, ownerID, databaseID string, batchID *string, limit int) ([]models.Card, error) {
	var cards []models.Card
	var err error
	if batchID != nil {
		err = r.db.SelectContext(ctx, &cards, `
			SELECT * FROM cards
			WHERE owner_id = $1 AND database_id = $2
				AND state = 'new' AND batch_id = $3
			ORDER BY ordinal_position ASC
			LIMIT $4`,
			ownerID, databaseID, *batchID, limit)
	} else {
		err = r.db.SelectContext(ctx, &cards, `
			SELECT * FROM cards
			WHERE owner_id = $1 AND database_id = $2 AND state = 'new'
			ORDER BY ordinal_position ASC
			LIMIT $3`,
			ownerID, databaseID, limit)
	}
	if err != nil {
		return nil, storeErr("list new cards", err)
	}
	return cards, nil
}

// CountBatchProgressTx returns how many live cards a batch has and how
// many of them are mature (review state with enough repetitions).
// go-sqlite3 binds $N by first appearance in the text, not by number, so
// placeholders must be numbered in the order they occur.
func (r *CardRepository) CountBatchProgressTx(ctx context.Context, tx *sqlx.Tx, batchID string, matureRepetitions int) (total, mature int, err error) {
	row := tx.QueryRowxContext(ctx, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN state = 'review' AND repetitions >= $1 THEN 1 ELSE 0 END), 0) AS mature
		FROM cards WHERE batch_id = $2`,
		matureRepetitions, batchID)
	if err := row.Scan(&total, &mature); err != nil {
		return 0, 0, storeErr("count batch progress", err)
	}
	return total, mature, nil
}

// DeleteByDatabaseTx removes every card of a database. Review history
// rows cascade with the cards.
func (r *CardRepository) DeleteByDatabaseTx(ctx context.Context, tx *sqlx.Tx, ownerID, databaseID string) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM cards WHERE owner_id = $1 AND database_id = $2",
		ownerID, databaseID); err != nil {
		return storeErr("delete cards", err)
	}
	return nil
}

// Summary counts a database's cards by state plus the currently due.
// The due-now placeholder comes first in the text, so it is $1; see
// CountBatchProgressTx on $N binding order.
func (r *CardRepository) Summary(ctx context.Context, ownerID, databaseID string, now time.Time) (*models.DeckSummary, error) {
	var summary models.DeckSummary
	err := r.db.GetContext(ctx, &summary, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN state = 'new' THEN 1 ELSE 0 END), 0) AS new_count,
			COALESCE(SUM(CASE WHEN state = 'learning' THEN 1 ELSE 0 END), 0) AS learning_count,
			COALESCE(SUM(CASE WHEN state = 'review' THEN 1 ELSE 0 END), 0) AS review_count,
			COALESCE(SUM(CASE WHEN state != 'new' AND due_at <= $1 THEN 1 ELSE 0 END), 0) AS due_now
		FROM cards WHERE owner_id = $2 AND database_id = $3`,
		now, ownerID, databaseID)
	if err != nil {
		return nil, storeErr("summarize deck", err)
	}
	return &summary, nil
}
