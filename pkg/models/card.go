package models

import "time"

// Card states. A card leaves "new" on its first review, graduates to
// "review" after its second consecutive success, and falls back to
// "learning" when a review lapses.
const (
	CardStateNew      = "new"
	CardStateLearning = "learning"
	CardStateReview   = "review"
)

// Card binds one vocabulary item to its spaced-repetition scheduling state
type Card struct {
	ID              string     `json:"id" db:"id"`
	OwnerID         string     `json:"owner_id" db:"owner_id"`
	DatabaseID      string     `json:"database_id" db:"database_id"`
	Signature       string     `json:"signature" db:"signature"` // word + "::" + part_of_speech, unique per owner and database
	Word            string     `json:"word" db:"word"`
	Translations    StringList `json:"translations" db:"translations"` // ordered, primary translation first
	PartOfSpeech    string     `json:"part_of_speech" db:"part_of_speech"`
	Lemma           string     `json:"lemma,omitempty" db:"lemma"`
	ExampleSentence string     `json:"example_sentence,omitempty" db:"example_sentence"`
	OrdinalPosition int        `json:"ordinal_position" db:"ordinal_position"` // position of the word in the source text
	State           string     `json:"state" db:"state"`
	EaseFactor      int        `json:"ease_factor" db:"ease_factor"`     // x1000 scale, 2500 = 2.5, floor 1300
	IntervalDays    int        `json:"interval_days" db:"interval_days"` // 0 only while new and never reviewed
	Repetitions     int        `json:"repetitions" db:"repetitions"`     // consecutive successes since the last lapse
	Lapses          int        `json:"lapses" db:"lapses"`               // lifetime failures, never reset
	DueAt           time.Time  `json:"due_at" db:"due_at"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
	BatchID         *string    `json:"batch_id,omitempty" db:"batch_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Signature builds the lexical identity key for a word form and its POS tag.
func Signature(word, partOfSpeech string) string {
	return word + "::" + partOfSpeech
}

// CardCandidate carries the word-source fields a card is minted from
type CardCandidate struct {
	OwnerID         string
	DatabaseID      string
	Word            string
	Translations    []string
	PartOfSpeech    string
	Lemma           string
	ExampleSentence string
	OrdinalPosition int
	BatchID         *string
}
