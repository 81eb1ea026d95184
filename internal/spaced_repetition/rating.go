package spaced_repetition

import (
	"fmt"

	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// Rating is the four-step answer scale exposed at the request boundary.
// It converts to the canonical 0-5 SM-2 quality in exactly one place,
// with one fixed monotonic mapping:
//
//	Again -> 0, Hard -> 3, Good -> 4, Easy -> 5
//
// Hard sits in the success band; only Again counts as a lapse.
type Rating int

const (
	Again Rating = iota + 1
	Hard
	Good
	Easy
)

// ParseRating validates a boundary-layer integer rating.
func ParseRating(v int) (Rating, error) {
	r := Rating(v)
	if !r.IsValid() {
		return 0, fmt.Errorf("%w: rating %d not in 1..4", models.ErrInvalidQuality, v)
	}
	return r, nil
}

// IsValid reports whether r is one of the four defined ratings.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// Quality maps the rating onto the canonical SM-2 quality scale.
func (r Rating) Quality() int {
	switch r {
	case Again:
		return 0
	case Hard:
		return 3
	case Good:
		return 4
	case Easy:
		return 5
	default:
		return -1 // rejected by ComputeNextSchedule
	}
}

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	default:
		return fmt.Sprintf("rating(%d)", int(r))
	}
}
