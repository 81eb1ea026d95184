package database

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

func seedHistory(t *testing.T, db *sqlx.DB, id, cardID string, quality, newEase int, at time.Time) {
	t.Helper()
	entry := &models.ReviewHistoryEntry{
		ID:               id,
		CardID:           cardID,
		Quality:          quality,
		PreviousInterval: 1,
		NewInterval:      6,
		PreviousEase:     2500,
		NewEase:          newEase,
		ReviewedAt:       at,
	}
	err := WithTransaction(context.Background(), db, func(tx *sqlx.Tx) error {
		return NewReviewHistoryRepository(db).InsertTx(context.Background(), tx, entry)
	})
	if err != nil {
		t.Fatalf("Failed to seed history: %v", err)
	}
}

func TestReviewHistoryListByCard(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewHistoryRepository(db)
	ctx := context.Background()

	mustCreateCard(t, db, testCard("card-1", "owner-1", "db-1", "gato"))

	seedHistory(t, db, "h-1", "card-1", 4, 2500, fixedNow.Add(-2*time.Hour))
	seedHistory(t, db, "h-2", "card-1", 5, 2600, fixedNow.Add(-time.Hour))

	entries, err := repo.ListByCard(ctx, "card-1", 10)
	if err != nil {
		t.Fatalf("ListByCard failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "h-2" {
		t.Errorf("Expected newest first, got %s", entries[0].ID)
	}
	if entries[0].NewEase != 2600 || entries[0].Quality != 5 {
		t.Errorf("Entry did not roundtrip: %+v", entries[0])
	}
}

func TestReviewHistoryCountSince(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewHistoryRepository(db)
	ctx := context.Background()

	mustCreateCard(t, db, testCard("card-1", "owner-1", "db-1", "gato"))
	mustCreateCard(t, db, testCard("card-2", "owner-2", "db-9", "perro"))

	dayStart := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	seedHistory(t, db, "h-1", "card-1", 4, 2500, dayStart.Add(2*time.Hour))
	seedHistory(t, db, "h-2", "card-1", 0, 1700, dayStart.Add(5*time.Hour))
	seedHistory(t, db, "h-3", "card-1", 4, 2500, dayStart.Add(-time.Hour)) // yesterday
	seedHistory(t, db, "h-4", "card-2", 4, 2500, dayStart.Add(time.Hour))  // other owner

	count, err := repo.CountSince(ctx, "owner-1", "db-1", dayStart)
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 reviews today, got %d", count)
	}
}

func TestReviewHistoryAverageEase(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewHistoryRepository(db)
	ctx := context.Background()

	mustCreateCard(t, db, testCard("card-1", "owner-1", "db-1", "gato"))

	// No reviews yet: the initial ease stands in.
	avg, err := repo.AverageEase(ctx, "owner-1", "db-1")
	if err != nil {
		t.Fatalf("AverageEase failed: %v", err)
	}
	if avg != 2500 {
		t.Errorf("Expected default 2500, got %v", avg)
	}

	seedHistory(t, db, "h-1", "card-1", 5, 2600, fixedNow)
	seedHistory(t, db, "h-2", "card-1", 3, 2400, fixedNow)

	avg, err = repo.AverageEase(ctx, "owner-1", "db-1")
	if err != nil {
		t.Fatalf("AverageEase failed: %v", err)
	}
	if avg != 2500 {
		t.Errorf("Expected mean 2500, got %v", avg)
	}
}

func TestReviewHistoryCascadesWithCard(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewHistoryRepository(db)
	cards := NewCardRepository(db)
	ctx := context.Background()

	mustCreateCard(t, db, testCard("card-1", "owner-1", "db-1", "gato"))
	seedHistory(t, db, "h-1", "card-1", 4, 2500, fixedNow)

	err := WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		return cards.DeleteByDatabaseTx(ctx, tx, "owner-1", "db-1")
	})
	if err != nil {
		t.Fatalf("DeleteByDatabaseTx failed: %v", err)
	}

	entries, err := repo.ListByCard(ctx, "card-1", 10)
	if err != nil {
		t.Fatalf("ListByCard failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected history to cascade with the card, %d rows remain", len(entries))
	}
}
