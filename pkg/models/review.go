package models

import "time"

// ReviewHistoryEntry is one row of the append-only review audit log. It is
// never mutated and feeds statistics only; scheduling state lives on the
// card itself.
type ReviewHistoryEntry struct {
	ID               string    `json:"id" db:"id"`
	CardID           string    `json:"card_id" db:"card_id"`
	Quality          int       `json:"quality" db:"quality"` // 0-5 as applied by the algorithm
	PreviousInterval int       `json:"previous_interval" db:"previous_interval"`
	NewInterval      int       `json:"new_interval" db:"new_interval"`
	PreviousEase     int       `json:"previous_ease" db:"previous_ease"`
	NewEase          int       `json:"new_ease" db:"new_ease"`
	ReviewedAt       time.Time `json:"reviewed_at" db:"reviewed_at"`
}

// ReviewResult is returned to the caller after a review is applied
type ReviewResult struct {
	Card         *Card     `json:"card"`
	NextReviewAt time.Time `json:"next_review_at"`
	IntervalDays int       `json:"interval_days"`
}

// StudyQueue is the three-part queue breakdown. Cards holds the combined
// presentation order: due learning and review cards first, then new
// introductions in source-text order.
type StudyQueue struct {
	NewCards      []Card `json:"new_cards"`
	LearningCards []Card `json:"learning_cards"`
	ReviewCards   []Card `json:"review_cards"`
	Total         int    `json:"total"`
	Cards         []Card `json:"cards"`
}

// DeckSummary counts a database's cards by state
type DeckSummary struct {
	Total    int `json:"total" db:"total"`
	New      int `json:"new" db:"new_count"`
	Learning int `json:"learning" db:"learning_count"`
	Review   int `json:"review" db:"review_count"`
	DueNow   int `json:"due_now" db:"due_now"`
}

// GenerateResult aggregates a bulk mint run. Duplicate signatures are
// counted as skips; other per-item failures are collected without aborting
// the run.
type GenerateResult struct {
	TotalProcessed int          `json:"total_processed"`
	Created        int          `json:"created"`
	Skipped        int          `json:"skipped"`
	Errors         []string     `json:"errors,omitempty"`
	Summary        *DeckSummary `json:"summary,omitempty"`
}

// IngestResult aggregates a bulk word-entry ingest
type IngestResult struct {
	TotalProcessed int      `json:"total_processed"`
	Created        int      `json:"created"`
	Errors         []string `json:"errors,omitempty"`
}

// StudyStats are derived from the review history
type StudyStats struct {
	ReviewsToday int     `json:"reviews_today"`
	AverageEase  float64 `json:"average_ease"` // mean new_ease across history entries, unscaled (2.5 = default)
	DueNow       int     `json:"due_now"`
}
