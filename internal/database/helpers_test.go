package database

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// newTestDB opens an in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// fixedNow keeps test timestamps deterministic.
var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func seedDatabase(t *testing.T, db *sqlx.DB, id, ownerID string) *models.WordDatabase {
	t.Helper()
	wdb := &models.WordDatabase{
		ID:        id,
		OwnerID:   ownerID,
		Name:      "test corpus",
		Language:  "es",
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
	if err := NewWordRepository(db).CreateDatabase(context.Background(), wdb); err != nil {
		t.Fatalf("Failed to seed word database: %v", err)
	}
	return wdb
}

func seedBatch(t *testing.T, db *sqlx.DB, id, ownerID, databaseID string, number int, active bool) *models.Batch {
	t.Helper()
	b := &models.Batch{
		ID:          id,
		OwnerID:     ownerID,
		DatabaseID:  databaseID,
		BatchNumber: number,
		TotalWords:  2,
		IsActive:    active,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	}
	if err := NewBatchRepository(db).Create(context.Background(), b); err != nil {
		t.Fatalf("Failed to seed batch: %v", err)
	}
	return b
}

// testCard builds a card in its minted state; callers tweak fields before
// inserting.
func testCard(id, ownerID, databaseID, word string) *models.Card {
	return &models.Card{
		ID:              id,
		OwnerID:         ownerID,
		DatabaseID:      databaseID,
		Signature:       models.Signature(word, "NOUN"),
		Word:            word,
		Translations:    models.StringList{word + "-t"},
		PartOfSpeech:    "NOUN",
		OrdinalPosition: 1,
		State:           models.CardStateNew,
		EaseFactor:      2500,
		IntervalDays:    0,
		Repetitions:     0,
		DueAt:           fixedNow.Add(24 * time.Hour),
		CreatedAt:       fixedNow,
		UpdatedAt:       fixedNow,
	}
}

func mustCreateCard(t *testing.T, db *sqlx.DB, card *models.Card) {
	t.Helper()
	if err := NewCardRepository(db).Create(context.Background(), card); err != nil {
		t.Fatalf("Failed to seed card %s: %v", card.ID, err)
	}
}
