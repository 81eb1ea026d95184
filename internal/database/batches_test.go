package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

func TestBatchGetActive(t *testing.T) {
	db := newTestDB(t)
	repo := NewBatchRepository(db)
	ctx := context.Background()

	seedBatch(t, db, "batch-1", "owner-1", "db-1", 1, true)
	seedBatch(t, db, "batch-2", "owner-1", "db-1", 2, false)

	active, err := repo.GetActive(ctx, "db-1")
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if active.ID != "batch-1" || !active.IsActive {
		t.Errorf("Expected batch-1 active, got %s", active.ID)
	}

	if _, err := repo.GetActive(ctx, "db-unbatched"); !errors.Is(err, models.ErrBatchNotFound) {
		t.Errorf("Expected ErrBatchNotFound for unbatched database, got %v", err)
	}
}

func TestBatchCompleteAndActivateNext(t *testing.T) {
	db := newTestDB(t)
	repo := NewBatchRepository(db)
	ctx := context.Background()

	seedBatch(t, db, "batch-1", "owner-1", "db-1", 1, true)
	seedBatch(t, db, "batch-3", "owner-1", "db-1", 3, false)
	seedBatch(t, db, "batch-2", "owner-1", "db-1", 2, false)

	err := WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		if err := repo.CompleteTx(ctx, tx, "batch-1", fixedNow); err != nil {
			return err
		}
		activated, err := repo.ActivateNextTx(ctx, tx, "db-1", fixedNow)
		if err != nil {
			return err
		}
		if !activated {
			t.Error("Expected a pending batch to activate")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}

	// Activation goes by batch number, not creation order.
	active, err := repo.GetActive(ctx, "db-1")
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if active.ID != "batch-2" {
		t.Errorf("Expected batch-2 active, got %s", active.ID)
	}

	batches, err := repo.ListByDatabase(ctx, "owner-1", "db-1")
	if err != nil {
		t.Fatalf("ListByDatabase failed: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("Expected 3 batches, got %d", len(batches))
	}
	if !batches[0].IsCompleted || batches[0].IsActive {
		t.Errorf("Expected batch-1 completed and inactive, got %+v", batches[0])
	}
	if batches[1].ID != "batch-2" || batches[2].ID != "batch-3" {
		t.Errorf("Expected batch_number order, got %s, %s", batches[1].ID, batches[2].ID)
	}
}

func TestBatchActivateNextExhausted(t *testing.T) {
	db := newTestDB(t)
	repo := NewBatchRepository(db)
	ctx := context.Background()

	seedBatch(t, db, "batch-1", "owner-1", "db-1", 1, true)

	err := WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		if err := repo.CompleteTx(ctx, tx, "batch-1", fixedNow); err != nil {
			return err
		}
		activated, err := repo.ActivateNextTx(ctx, tx, "db-1", fixedNow)
		if err != nil {
			return err
		}
		if activated {
			t.Error("Expected no batch left to activate")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}

	// The final completion leaves the database without an active batch.
	if _, err := repo.GetActive(ctx, "db-1"); !errors.Is(err, models.ErrBatchNotFound) {
		t.Errorf("Expected no active batch, got %v", err)
	}
}

func TestBatchUpdateProgress(t *testing.T) {
	db := newTestDB(t)
	repo := NewBatchRepository(db)
	ctx := context.Background()

	seedBatch(t, db, "batch-1", "owner-1", "db-1", 1, true)

	err := WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		if err := repo.UpdateProgressTx(ctx, tx, "batch-1", 7, fixedNow); err != nil {
			return err
		}
		batch, err := repo.GetTx(ctx, tx, "batch-1")
		if err != nil {
			return err
		}
		if batch.WordsLearned != 7 {
			t.Errorf("Expected 7 words learned, got %d", batch.WordsLearned)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateProgressTx failed: %v", err)
	}
}

func TestBatchListActiveAcrossDatabases(t *testing.T) {
	db := newTestDB(t)
	repo := NewBatchRepository(db)
	ctx := context.Background()

	seedBatch(t, db, "batch-1", "owner-1", "db-1", 1, true)
	seedBatch(t, db, "batch-2", "owner-1", "db-2", 1, true)
	seedBatch(t, db, "batch-3", "owner-2", "db-3", 1, false)

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("Expected 2 active batches, got %d", len(active))
	}
}

func TestBatchDuplicateNumberRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewBatchRepository(db)
	ctx := context.Background()

	seedBatch(t, db, "batch-1", "owner-1", "db-1", 1, true)

	dup := &models.Batch{
		ID:          "batch-dup",
		OwnerID:     "owner-1",
		DatabaseID:  "db-1",
		BatchNumber: 1,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	}
	if err := repo.Create(ctx, dup); err == nil {
		t.Error("Expected unique constraint on (database_id, batch_number)")
	}
}
