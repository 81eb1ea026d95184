package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// DefaultDigestHour is the UTC hour the daily due digest is logged at.
const DefaultDigestHour = 8

// jobTimeout bounds one maintenance run.
const jobTimeout = 5 * time.Minute

// Maintainer is the deck-service surface the background jobs need.
type Maintainer interface {
	ReconcileBatches(ctx context.Context) (int, error)
	DueDigest(ctx context.Context) ([]models.DatabaseDigest, error)
}

// Scheduler manages the background maintenance tasks: the hourly batch
// reconciliation sweep and the daily due digest.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	maintainer Maintainer
}

// New creates a new scheduler instance
func New(maintainer Maintainer) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:  s,
		maintainer: maintainer,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.reconcileBatches)
	s.scheduler.Every(1).Day().At(digestTime()).Do(s.logDueDigest)

	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// reconcileBatches re-runs the batch completion check, healing any
// transition a crashed or raced review missed.
func (s *Scheduler) reconcileBatches() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	completed, err := s.maintainer.ReconcileBatches(ctx)
	if err != nil {
		log.Printf("Error reconciling batches: %v", err)
		return
	}
	if completed > 0 {
		log.Printf("Batch reconciliation completed %d batch(es)", completed)
	}
}

// logDueDigest writes one line per database with its due and new counts.
func (s *Scheduler) logDueDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	digest, err := s.maintainer.DueDigest(ctx)
	if err != nil {
		log.Printf("Error building due digest: %v", err)
		return
	}
	for _, d := range digest {
		log.Printf("Digest: database %s (%s) has %d due, %d new", d.Name, d.DatabaseID, d.DueNow, d.New)
	}
}

// RunManualReconcile forces a reconciliation sweep outside the schedule.
func (s *Scheduler) RunManualReconcile(ctx context.Context) (int, error) {
	return s.maintainer.ReconcileBatches(ctx)
}

// digestTime returns the daily digest time as HH:00, from DIGEST_HOUR
// when set.
func digestTime() string {
	hour := DefaultDigestHour
	if v := os.Getenv("DIGEST_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			hour = h
		}
	}
	return fmt.Sprintf("%02d:00", hour)
}
