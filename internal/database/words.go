package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// WordRepository handles database operations for word databases and their
// entries (the word source cards are minted from)
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// CreateDatabase inserts a new word database.
func (r *WordRepository) CreateDatabase(ctx context.Context, wdb *models.WordDatabase) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO word_databases (id, owner_id, name, language, created_at, updated_at)
		VALUES (:id, :owner_id, :name, :language, :created_at, :updated_at)`,
		wdb)
	if err != nil {
		return storeErr("create word database", err)
	}
	return nil
}

// GetDatabase returns an owner's word database by id.
func (r *WordRepository) GetDatabase(ctx context.Context, id, ownerID string) (*models.WordDatabase, error) {
	var wdb models.WordDatabase
	err := r.db.GetContext(ctx, &wdb,
		"SELECT * FROM word_databases WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return nil, notFound(err, models.ErrDatabaseNotFound, "get word database")
	}
	return &wdb, nil
}

// ListDatabases returns all word databases, newest first.
func (r *WordRepository) ListDatabases(ctx context.Context) ([]models.WordDatabase, error) {
	var dbs []models.WordDatabase
	err := r.db.SelectContext(ctx, &dbs,
		"SELECT * FROM word_databases ORDER BY created_at DESC")
	if err != nil {
		return nil, storeErr("list word databases", err)
	}
	return dbs, nil
}

// ListDatabasesByOwner returns one owner's word databases, newest first.
func (r *WordRepository) ListDatabasesByOwner(ctx context.Context, ownerID string) ([]models.WordDatabase, error) {
	var dbs []models.WordDatabase
	err := r.db.SelectContext(ctx, &dbs,
		"SELECT * FROM word_databases WHERE owner_id = $1 ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, storeErr("list word databases", err)
	}
	return dbs, nil
}

// InsertEntry adds one word entry to a database.
func (r *WordRepository) InsertEntry(ctx context.Context, entry *models.WordEntry) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO words (
			id, database_id, word, part_of_speech, lemma, translations,
			sentence, position, first_instance, known, created_at, updated_at
		) VALUES (
			:id, :database_id, :word, :part_of_speech, :lemma, :translations,
			:sentence, :position, :first_instance, :known, :created_at, :updated_at
		)`,
		entry)
	if err != nil {
		return storeErr("insert word entry", err)
	}
	return nil
}

// GetEntry returns a word entry by id.
func (r *WordRepository) GetEntry(ctx context.Context, id string) (*models.WordEntry, error) {
	var entry models.WordEntry
	err := r.db.GetContext(ctx, &entry, "SELECT * FROM words WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, models.ErrWordNotFound, "get word entry")
	}
	return &entry, nil
}

// ListByDatabase returns a database's word entries in text order.
func (r *WordRepository) ListByDatabase(ctx context.Context, databaseID string) ([]models.WordEntry, error) {
	var entries []models.WordEntry
	err := r.db.SelectContext(ctx, &entries,
		"SELECT * FROM words WHERE database_id = $1 ORDER BY position ASC", databaseID)
	if err != nil {
		return nil, storeErr("list word entries", err)
	}
	return entries, nil
}

// ListUnknownFirstInstances returns the raw candidate pool: first-instance
// entries not marked known, in text order. Translation checks are the
// caller's (Eligible).
func (r *WordRepository) ListUnknownFirstInstances(ctx context.Context, databaseID string) ([]models.WordEntry, error) {
	var entries []models.WordEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM words
		WHERE database_id = $1 AND first_instance = $2 AND known = $3
		ORDER BY position ASC`,
		databaseID, true, false)
	if err != nil {
		return nil, storeErr("list candidate words", err)
	}
	return entries, nil
}

// ListByIDs returns the subset of a database's entries with the given ids,
// in text order.
func (r *WordRepository) ListByIDs(ctx context.Context, databaseID string, ids []string) ([]models.WordEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		"SELECT * FROM words WHERE database_id = ? AND id IN (?) ORDER BY position ASC",
		databaseID, ids)
	if err != nil {
		return nil, storeErr("list words by id", err)
	}
	query = r.db.Rebind(query)

	var entries []models.WordEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, storeErr("list words by id", err)
	}
	return entries, nil
}

// SetKnown flips the known flag on a word entry and returns the updated
// row.
func (r *WordRepository) SetKnown(ctx context.Context, id string, known bool, now time.Time) (*models.WordEntry, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE words SET known = $1, updated_at = $2 WHERE id = $3",
		known, now, id)
	if err != nil {
		return nil, storeErr("update word entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, storeErr("update word entry", err)
	}
	if n == 0 {
		return nil, models.ErrWordNotFound
	}
	return r.GetEntry(ctx, id)
}
