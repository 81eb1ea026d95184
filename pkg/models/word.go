package models

import "time"

// WordDatabase groups the word entries of one analyzed source text
type WordDatabase struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Language  string    `json:"language,omitempty" db:"language"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WordEntry is one tagged word occurrence supplied by the word source
type WordEntry struct {
	ID            string     `json:"id" db:"id"`
	DatabaseID    string     `json:"database_id" db:"database_id"`
	Word          string     `json:"word" db:"word"`
	PartOfSpeech  string     `json:"part_of_speech" db:"part_of_speech"`
	Lemma         string     `json:"lemma,omitempty" db:"lemma"`
	Translations  StringList `json:"translations" db:"translations"`
	Sentence      string     `json:"sentence,omitempty" db:"sentence"` // example usage from the source text
	Position      int        `json:"position" db:"position"`           // ordinal position of the occurrence in the text
	FirstInstance bool       `json:"first_instance" db:"first_instance"`
	Known         bool       `json:"known" db:"known"` // marked known by the user, excluded from minting
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Eligible reports whether the entry is a card-minting candidate: the
// first instance of a word with at least one non-empty translation, not
// already known.
func (w *WordEntry) Eligible() bool {
	return w.FirstInstance && !w.Known && len(w.Translations) > 0 && w.Translations[0] != ""
}

// DatabaseDigest is one line of the daily due digest
type DatabaseDigest struct {
	DatabaseID string `json:"database_id"`
	Name       string `json:"name"`
	DueNow     int    `json:"due_now"`
	New        int    `json:"new"`
}
