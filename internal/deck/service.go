package deck

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DimaChup/anki-flashcards-sub000/internal/database"
	"github.com/DimaChup/anki-flashcards-sub000/internal/spaced_repetition"
	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// DefaultBatchSize is how many candidate words one batch stages.
const DefaultBatchSize = 30

// reviewAttempts bounds the optimistic-concurrency retry loop on a
// contended card.
const reviewAttempts = 3

// Service implements the scheduling operations on top of the card store.
// Every method is a short, independent unit of work; nothing here runs in
// the background.
type Service struct {
	db      *sqlx.DB
	sm2     *spaced_repetition.SM2
	cards   *database.CardRepository
	words   *database.WordRepository
	batches *database.BatchRepository
	history *database.ReviewHistoryRepository

	batchSize int
}

// NewService wires a service over an opened database handle. BATCH_SIZE
// overrides the default batch size.
func NewService(db *sqlx.DB) *Service {
	return &Service{
		db:        db,
		sm2:       spaced_repetition.NewSM2(),
		cards:     database.NewCardRepository(db),
		words:     database.NewWordRepository(db),
		batches:   database.NewBatchRepository(db),
		history:   database.NewReviewHistoryRepository(db),
		batchSize: envIntOr("BATCH_SIZE", DefaultBatchSize),
	}
}

// MintCard creates a card for a word-source candidate: state new, default
// ease, zero interval, due tomorrow. A live card with the same signature
// in the same database surfaces as ErrDuplicateSignature.
func (s *Service) MintCard(ctx context.Context, cand models.CardCandidate) (*models.Card, error) {
	if cand.Word == "" || cand.PartOfSpeech == "" {
		return nil, fmt.Errorf("candidate needs a word and a part of speech")
	}
	if len(cand.Translations) == 0 || cand.Translations[0] == "" {
		return nil, fmt.Errorf("candidate %q has no translation", cand.Word)
	}

	now := time.Now().UTC()
	sched := spaced_repetition.NewCardSchedule(now)
	card := &models.Card{
		ID:              uuid.New().String(),
		OwnerID:         cand.OwnerID,
		DatabaseID:      cand.DatabaseID,
		Signature:       models.Signature(cand.Word, cand.PartOfSpeech),
		Word:            cand.Word,
		Translations:    cand.Translations,
		PartOfSpeech:    cand.PartOfSpeech,
		Lemma:           cand.Lemma,
		ExampleSentence: cand.ExampleSentence,
		OrdinalPosition: cand.OrdinalPosition,
		State:           models.CardStateNew,
		EaseFactor:      sched.EaseFactor,
		IntervalDays:    sched.IntervalDays,
		Repetitions:     sched.Repetitions,
		Lapses:          0,
		DueAt:           sched.DueAt,
		BatchID:         cand.BatchID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.cards.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// Review applies a rated review to a card and persists the outcome
// atomically: the schedule update, the history entry, and any batch
// transition commit together. A concurrent review of the same card is
// detected by the guarded update and recomputed from fresh state.
func (s *Service) Review(ctx context.Context, ownerID, cardID string, rating spaced_repetition.Rating) (*models.ReviewResult, error) {
	if !rating.IsValid() {
		return nil, fmt.Errorf("%w: rating %d not in 1..4", models.ErrInvalidQuality, int(rating))
	}
	quality := rating.Quality()

	for attempt := 0; attempt < reviewAttempts; attempt++ {
		card, err := s.cards.GetByID(ctx, cardID, ownerID)
		if err != nil {
			return nil, err
		}

		guard := database.ScheduleGuard{
			Repetitions:  card.Repetitions,
			EaseFactor:   card.EaseFactor,
			IntervalDays: card.IntervalDays,
			Lapses:       card.Lapses,
		}

		now := time.Now().UTC()
		entry, err := s.sm2.Review(card, quality, now)
		if err != nil {
			return nil, err
		}
		entry.ID = uuid.New().String()

		var applied bool
		err = database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
			ok, txErr := s.cards.UpdateScheduleTx(ctx, tx, card, guard)
			if txErr != nil {
				return txErr
			}
			if !ok {
				return nil
			}
			applied = true
			if txErr := s.history.InsertTx(ctx, tx, &entry); txErr != nil {
				return txErr
			}
			if card.BatchID != nil && s.sm2.IsMature(card) {
				if _, txErr := s.reconcileBatchTx(ctx, tx, *card.BatchID, now); txErr != nil {
					return txErr
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if applied {
			return &models.ReviewResult{
				Card:         card,
				NextReviewAt: card.DueAt,
				IntervalDays: card.IntervalDays,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: card %s contended past %d attempts",
		models.ErrStoreUnavailable, cardID, reviewAttempts)
}

// DueCards returns reviewable cards whose due timestamp has passed,
// oldest due first.
func (s *Service) DueCards(ctx context.Context, ownerID, databaseID string, limit int) ([]models.Card, error) {
	if _, err := s.words.GetDatabase(ctx, databaseID, ownerID); err != nil {
		return nil, err
	}
	return s.cards.ListDue(ctx, ownerID, databaseID, time.Now().UTC(), limit)
}

// BuildStudyQueue composes the session's card list: due learning and
// review cards merged by due time (capped by reviewLimit), followed by up
// to newCardLimit new cards in source-text order. When the database has
// an active batch, only its cards are introduced as new.
func (s *Service) BuildStudyQueue(ctx context.Context, ownerID, databaseID string, newCardLimit, reviewLimit int) (*models.StudyQueue, error) {
	if _, err := s.words.GetDatabase(ctx, databaseID, ownerID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	var batchID *string
	active, err := s.batches.GetActive(ctx, databaseID)
	switch {
	case err == nil:
		batchID = &active.ID
	case errors.Is(err, models.ErrBatchNotFound):
		// unbatched database, no gating
	default:
		return nil, err
	}

	due, err := s.cards.ListDue(ctx, ownerID, databaseID, now, reviewLimit)
	if err != nil {
		return nil, err
	}
	newCards, err := s.cards.ListNew(ctx, ownerID, databaseID, batchID, newCardLimit)
	if err != nil {
		return nil, err
	}

	queue := &models.StudyQueue{NewCards: newCards}
	for _, c := range due {
		if c.State == models.CardStateLearning {
			queue.LearningCards = append(queue.LearningCards, c)
		} else {
			queue.ReviewCards = append(queue.ReviewCards, c)
		}
	}
	queue.Cards = make([]models.Card, 0, len(due)+len(newCards))
	queue.Cards = append(queue.Cards, due...)
	queue.Cards = append(queue.Cards, newCards...)
	queue.Total = len(queue.Cards)
	return queue, nil
}

// Generate mints cards for a database's eligible candidates (or the given
// subset of word ids). Duplicate signatures are skipped, other per-item
// failures collected; the run never aborts on one bad word. A full-deck
// run on a database without batches also stages the candidates into
// batches, activating the first.
func (s *Service) Generate(ctx context.Context, ownerID, databaseID string, wordIDs []string) (*models.GenerateResult, error) {
	if _, err := s.words.GetDatabase(ctx, databaseID, ownerID); err != nil {
		return nil, err
	}

	var entries []models.WordEntry
	var err error
	if len(wordIDs) > 0 {
		entries, err = s.words.ListByIDs(ctx, databaseID, wordIDs)
	} else {
		entries, err = s.words.ListUnknownFirstInstances(ctx, databaseID)
	}
	if err != nil {
		return nil, err
	}

	eligible := make([]models.WordEntry, 0, len(entries))
	for i := range entries {
		if entries[i].Eligible() {
			eligible = append(eligible, entries[i])
		}
	}

	batchForIndex := func(int) *string { return nil }
	if len(wordIDs) == 0 && len(eligible) > 0 {
		existing, err := s.batches.ListByDatabase(ctx, ownerID, databaseID)
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			created, err := s.createBatches(ctx, ownerID, databaseID, len(eligible))
			if err != nil {
				return nil, err
			}
			batchForIndex = func(i int) *string { return &created[i/s.batchSize].ID }
		}
	}

	result := &models.GenerateResult{}
	for i := range eligible {
		e := &eligible[i]
		result.TotalProcessed++
		_, err := s.MintCard(ctx, models.CardCandidate{
			OwnerID:         ownerID,
			DatabaseID:      databaseID,
			Word:            e.Word,
			Translations:    e.Translations,
			PartOfSpeech:    e.PartOfSpeech,
			Lemma:           e.Lemma,
			ExampleSentence: e.Sentence,
			OrdinalPosition: e.Position,
			BatchID:         batchForIndex(i),
		})
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, models.ErrDuplicateSignature):
			result.Skipped++
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", e.Word, err))
		}
	}

	summary, err := s.cards.Summary(ctx, ownerID, databaseID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	result.Summary = summary
	return result, nil
}

// Reset destructively regenerates a deck: all cards (their history
// cascades) and batches are deleted in one transaction, then the deck is
// generated fresh from the current word source. Confirmation is the
// caller layer's responsibility.
func (s *Service) Reset(ctx context.Context, ownerID, databaseID string) (*models.GenerateResult, error) {
	if _, err := s.words.GetDatabase(ctx, databaseID, ownerID); err != nil {
		return nil, err
	}
	err := database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.cards.DeleteByDatabaseTx(ctx, tx, ownerID, databaseID); err != nil {
			return err
		}
		return s.batches.DeleteByDatabaseTx(ctx, tx, ownerID, databaseID)
	})
	if err != nil {
		return nil, err
	}
	return s.Generate(ctx, ownerID, databaseID, nil)
}

// Summary returns the deck's per-state counts.
func (s *Service) Summary(ctx context.Context, ownerID, databaseID string) (*models.DeckSummary, error) {
	if _, err := s.words.GetDatabase(ctx, databaseID, ownerID); err != nil {
		return nil, err
	}
	return s.cards.Summary(ctx, ownerID, databaseID, time.Now().UTC())
}

// Card returns one card scoped to its owner.
func (s *Service) Card(ctx context.Context, ownerID, cardID string) (*models.Card, error) {
	return s.cards.GetByID(ctx, cardID, ownerID)
}

// Batches lists a database's batches in activation order.
func (s *Service) Batches(ctx context.Context, ownerID, databaseID string) ([]models.Batch, error) {
	if _, err := s.words.GetDatabase(ctx, databaseID, ownerID); err != nil {
		return nil, err
	}
	return s.batches.ListByDatabase(ctx, ownerID, databaseID)
}

// Stats derives study statistics from the review history: reviews made
// today (UTC) and the mean post-review ease, plus the currently due count.
func (s *Service) Stats(ctx context.Context, ownerID, databaseID string) (*models.StudyStats, error) {
	if _, err := s.words.GetDatabase(ctx, databaseID, ownerID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	reviews, err := s.history.CountSince(ctx, ownerID, databaseID, dayStart)
	if err != nil {
		return nil, err
	}
	avg, err := s.history.AverageEase(ctx, ownerID, databaseID)
	if err != nil {
		return nil, err
	}
	summary, err := s.cards.Summary(ctx, ownerID, databaseID, now)
	if err != nil {
		return nil, err
	}

	return &models.StudyStats{
		ReviewsToday: reviews,
		AverageEase:  avg / spaced_repetition.EaseScale,
		DueNow:       summary.DueNow,
	}, nil
}

// createBatches partitions totalWords candidates into numbered batches,
// the first one active.
func (s *Service) createBatches(ctx context.Context, ownerID, databaseID string, totalWords int) ([]models.Batch, error) {
	now := time.Now().UTC()
	count := (totalWords + s.batchSize - 1) / s.batchSize
	batches := make([]models.Batch, 0, count)
	for n := 1; n <= count; n++ {
		size := s.batchSize
		if n == count {
			size = totalWords - (count-1)*s.batchSize
		}
		b := models.Batch{
			ID:          uuid.New().String(),
			OwnerID:     ownerID,
			DatabaseID:  databaseID,
			BatchNumber: n,
			TotalWords:  size,
			IsActive:    n == 1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.batches.Create(ctx, &b); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

// reconcileBatchTx recomputes a batch's learned-word count from live
// cards and, when every card is mature, completes the batch and activates
// the next one by number. It reports whether the batch completed.
func (s *Service) reconcileBatchTx(ctx context.Context, tx *sqlx.Tx, batchID string, now time.Time) (bool, error) {
	batch, err := s.batches.GetTx(ctx, tx, batchID)
	if err != nil {
		return false, err
	}

	total, mature, err := s.cards.CountBatchProgressTx(ctx, tx, batchID, s.sm2.MatureRepetitions)
	if err != nil {
		return false, err
	}

	if mature != batch.WordsLearned {
		if err := s.batches.UpdateProgressTx(ctx, tx, batchID, mature, now); err != nil {
			return false, err
		}
	}

	if !batch.IsActive || mature != total {
		return false, nil
	}
	if err := s.batches.CompleteTx(ctx, tx, batchID, now); err != nil {
		return false, err
	}
	if _, err := s.batches.ActivateNextTx(ctx, tx, batch.DatabaseID, now); err != nil {
		return false, err
	}
	return true, nil
}

// ReconcileBatches re-runs the completion check over every active batch.
// The review path already advances batches; this heals any transition a
// crashed or raced request missed. It returns how many batches completed.
func (s *Service) ReconcileBatches(ctx context.Context) (int, error) {
	active, err := s.batches.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	completed := 0
	for i := range active {
		var done bool
		err := database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
			var txErr error
			done, txErr = s.reconcileBatchTx(ctx, tx, active[i].ID, time.Now().UTC())
			return txErr
		})
		if err != nil {
			return completed, err
		}
		if done {
			completed++
		}
	}
	return completed, nil
}

// DueDigest summarizes every database's due and new counts for the daily
// maintenance log line.
func (s *Service) DueDigest(ctx context.Context) ([]models.DatabaseDigest, error) {
	dbs, err := s.words.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	digest := make([]models.DatabaseDigest, 0, len(dbs))
	for i := range dbs {
		summary, err := s.cards.Summary(ctx, dbs[i].OwnerID, dbs[i].ID, now)
		if err != nil {
			return nil, err
		}
		digest = append(digest, models.DatabaseDigest{
			DatabaseID: dbs[i].ID,
			Name:       dbs[i].Name,
			DueNow:     summary.DueNow,
			New:        summary.New,
		})
	}
	return digest, nil
}

// Databases lists the owner's word databases.
func (s *Service) Databases(ctx context.Context, ownerID string) ([]models.WordDatabase, error) {
	return s.words.ListDatabasesByOwner(ctx, ownerID)
}

// CreateDatabase registers a word database to ingest entries into.
func (s *Service) CreateDatabase(ctx context.Context, ownerID, name, language string) (*models.WordDatabase, error) {
	if name == "" {
		return nil, fmt.Errorf("database needs a name")
	}
	now := time.Now().UTC()
	wdb := &models.WordDatabase{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		Language:  language,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.words.CreateDatabase(ctx, wdb); err != nil {
		return nil, err
	}
	return wdb, nil
}

// IngestWords bulk-loads word entries into a database. Per-item
// validation failures are collected, not fatal.
func (s *Service) IngestWords(ctx context.Context, ownerID, databaseID string, entries []models.WordEntry) (*models.IngestResult, error) {
	if _, err := s.words.GetDatabase(ctx, databaseID, ownerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := &models.IngestResult{}
	for i := range entries {
		e := entries[i]
		result.TotalProcessed++
		if e.Word == "" || e.PartOfSpeech == "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("entry %d: needs a word and a part of speech", i))
			continue
		}
		e.ID = uuid.New().String()
		e.DatabaseID = databaseID
		e.CreatedAt = now
		e.UpdatedAt = now
		if err := s.words.InsertEntry(ctx, &e); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", e.Word, err))
			continue
		}
		result.Created++
	}
	return result, nil
}

// Words lists a database's entries, optionally narrowed to minting
// candidates.
func (s *Service) Words(ctx context.Context, ownerID, databaseID string, eligibleOnly bool) ([]models.WordEntry, error) {
	if _, err := s.words.GetDatabase(ctx, databaseID, ownerID); err != nil {
		return nil, err
	}
	if !eligibleOnly {
		return s.words.ListByDatabase(ctx, databaseID)
	}
	entries, err := s.words.ListUnknownFirstInstances(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	eligible := make([]models.WordEntry, 0, len(entries))
	for i := range entries {
		if entries[i].Eligible() {
			eligible = append(eligible, entries[i])
		}
	}
	return eligible, nil
}

// SetWordKnown flips a word's known flag after checking the owner holds
// its database. Known words leave the candidate pool; existing cards are
// untouched.
func (s *Service) SetWordKnown(ctx context.Context, ownerID, wordID string, known bool) (*models.WordEntry, error) {
	entry, err := s.words.GetEntry(ctx, wordID)
	if err != nil {
		return nil, err
	}
	if _, err := s.words.GetDatabase(ctx, entry.DatabaseID, ownerID); err != nil {
		return nil, err
	}
	return s.words.SetKnown(ctx, wordID, known, time.Now().UTC())
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
