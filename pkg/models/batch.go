package models

import "time"

// Batch is an ordered partition of a database's candidate words used to
// gate the introduction of new vocabulary: pending -> active -> completed,
// with at most one active batch per database.
type Batch struct {
	ID           string    `json:"id" db:"id"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	DatabaseID   string    `json:"database_id" db:"database_id"`
	BatchNumber  int       `json:"batch_number" db:"batch_number"` // 1-based activation order
	TotalWords   int       `json:"total_words" db:"total_words"`
	WordsLearned int       `json:"words_learned" db:"words_learned"` // derived: mature cards in the batch
	IsActive     bool      `json:"is_active" db:"is_active"`
	IsCompleted  bool      `json:"is_completed" db:"is_completed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
