package spaced_repetition

import (
	"fmt"
	"math"
	"time"

	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// Ease factors are stored as integers scaled by EaseScale (2500 = 2.5) so
// cards never accumulate floating-point drift between reviews.
const (
	EaseScale         = 1000
	InitialEaseFactor = 2500
	MinEaseFactor     = 1300

	// PassQuality splits the 0-5 quality scale: quality >= 3 is a success.
	PassQuality = 3

	// Fixed interval steps for the first and second consecutive success.
	// Later intervals grow by the ease factor.
	FirstIntervalDays  = 1
	SecondIntervalDays = 6

	// GraduateRepetitions is the consecutive-success count at which a card
	// moves from learning to review.
	GraduateRepetitions = 2

	// DefaultMatureRepetitions is the batch-completion threshold: a card
	// counts as mature once it is in review state with this many
	// consecutive successes.
	DefaultMatureRepetitions = 3

	// DefaultMaxIntervalDays caps computed intervals at one year.
	DefaultMaxIntervalDays = 365
)

// InitialDueDelay is how far in the future a freshly minted card is due.
const InitialDueDelay = 24 * time.Hour

// SM2 implements the SuperMemo-2 variant used by the scheduler
type SM2 struct {
	PassQuality       int
	MaxIntervalDays   int
	MatureRepetitions int
}

// NewSM2 returns an SM2 instance with the default thresholds
func NewSM2() *SM2 {
	return &SM2{
		PassQuality:       PassQuality,
		MaxIntervalDays:   DefaultMaxIntervalDays,
		MatureRepetitions: DefaultMatureRepetitions,
	}
}

// Schedule is the persisted scheduling state of a card
type Schedule struct {
	Repetitions  int
	EaseFactor   int // x1000
	IntervalDays int
	DueAt        time.Time
}

// NewCardSchedule returns the state a card is minted with: never reviewed,
// default ease, due after the initial delay.
func NewCardSchedule(now time.Time) Schedule {
	return Schedule{
		Repetitions:  0,
		EaseFactor:   InitialEaseFactor,
		IntervalDays: 0,
		DueAt:        now.Add(InitialDueDelay),
	}
}

// ComputeNextSchedule applies one review of the given quality (0-5) to a
// schedule and returns the next one. It is pure: now is a parameter and
// the receiver only supplies thresholds. Quality outside [0,5] is rejected
// before anything is computed.
//
// The interval for a repeated success grows from the ease factor the card
// had before this review; the ease update itself always applies, success
// or failure, using the original quality. Rounding is half away from zero.
func (sm *SM2) ComputeNextSchedule(quality int, prev Schedule, now time.Time) (Schedule, error) {
	if quality < 0 || quality > 5 {
		return Schedule{}, fmt.Errorf("%w: %d", models.ErrInvalidQuality, quality)
	}

	var next Schedule

	if quality >= sm.PassQuality {
		switch prev.Repetitions {
		case 0:
			next.IntervalDays = FirstIntervalDays
		case 1:
			next.IntervalDays = SecondIntervalDays
		default:
			ease := float64(prev.EaseFactor) / EaseScale
			next.IntervalDays = int(math.Round(float64(prev.IntervalDays) * ease))
		}
		next.Repetitions = prev.Repetitions + 1
	} else {
		next.Repetitions = 0
		next.IntervalDays = FirstIntervalDays
	}

	if next.IntervalDays > sm.MaxIntervalDays {
		next.IntervalDays = sm.MaxIntervalDays
	}

	q := float64(5 - quality)
	ease := float64(prev.EaseFactor)/EaseScale + (0.1 - q*(0.08+q*0.02))
	next.EaseFactor = int(math.Round(ease * EaseScale))
	if next.EaseFactor < MinEaseFactor {
		next.EaseFactor = MinEaseFactor
	}

	next.DueAt = now.AddDate(0, 0, next.IntervalDays)
	return next, nil
}

// Review applies a review to the card in place and returns the history
// entry describing the transition. The caller persists both. Lapses are
// bumped here; the state follows the graduation rule.
func (sm *SM2) Review(card *models.Card, quality int, now time.Time) (models.ReviewHistoryEntry, error) {
	prev := Schedule{
		Repetitions:  card.Repetitions,
		EaseFactor:   card.EaseFactor,
		IntervalDays: card.IntervalDays,
		DueAt:        card.DueAt,
	}
	next, err := sm.ComputeNextSchedule(quality, prev, now)
	if err != nil {
		return models.ReviewHistoryEntry{}, err
	}

	entry := models.ReviewHistoryEntry{
		CardID:           card.ID,
		Quality:          quality,
		PreviousInterval: card.IntervalDays,
		NewInterval:      next.IntervalDays,
		PreviousEase:     card.EaseFactor,
		NewEase:          next.EaseFactor,
		ReviewedAt:       now,
	}

	if quality < sm.PassQuality {
		card.Lapses++
	}
	card.Repetitions = next.Repetitions
	card.EaseFactor = next.EaseFactor
	card.IntervalDays = next.IntervalDays
	card.DueAt = next.DueAt
	card.State = nextState(next.Repetitions)
	card.LastReviewedAt = &now
	card.UpdatedAt = now

	return entry, nil
}

// nextState derives the card state from its consecutive-success count: two
// successes graduate a card to review, any lapse drops it back to
// learning. Cards never return to new.
func nextState(repetitions int) string {
	if repetitions >= GraduateRepetitions {
		return models.CardStateReview
	}
	return models.CardStateLearning
}

// IsMature reports whether a card counts toward batch completion.
func (sm *SM2) IsMature(card *models.Card) bool {
	return card.State == models.CardStateReview && card.Repetitions >= sm.MatureRepetitions
}
