// Package worker runs background maintenance: the hold expiry sweep
// that cancels lapsed pending bookings and returns their capacity, and
// the membership lapse check.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/sporthub/sporthub-api/internal/model"
	"github.com/sporthub/sporthub-api/internal/repository"
)

// sweepBatchSize bounds how many lapsed holds one sweep transaction
// touches so the row locks stay short-lived.
const sweepBatchSize = 100

// Sweeper cancels PENDING bookings whose capacity hold has expired and
// expires memberships past their validity window.  Expired holds are
// processed under FOR UPDATE so a racing payment verify either beats
// the sweep or observes the cancellation and re-acquires.
type Sweeper struct {
	Bookings    *repository.BookingRepo
	Events      *repository.EventRepo
	Memberships *repository.MembershipRepo
	Interval    time.Duration
}

// NewSweeper constructs a Sweeper.
func NewSweeper(b *repository.BookingRepo, e *repository.EventRepo, m *repository.MembershipRepo, interval time.Duration) *Sweeper {
	if b == nil || e == nil || m == nil {
		panic("nil repository passed to NewSweeper")
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{Bookings: b, Events: e, Memberships: m, Interval: interval}
}

// Run blocks, sweeping on every tick until the context is cancelled.
// It is meant to be started as a goroutine next to the HTTP server.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("sweeper: started, interval %s", s.Interval)
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper: stopped")
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				log.Printf("sweeper: sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("sweeper: cancelled %d expired booking(s)", n)
			}
			if n, err := s.Memberships.ExpireLapsed(ctx); err != nil {
				log.Printf("sweeper: membership expiry failed: %v", err)
			} else if n > 0 {
				log.Printf("sweeper: expired %d membership(s)", n)
			}
		}
	}
}

// SweepOnce cancels one batch of expired pending bookings and releases
// their capacity in a single transaction.  It returns how many bookings
// were cancelled.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	tx, err := s.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	expired, err := s.Bookings.ExpiredPendingTx(ctx, tx, sweepBatchSize)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}
	for _, rec := range expired {
		if err := s.Bookings.ReleaseTx(ctx, tx, s.Events, rec, model.BookingCancelled); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(expired), nil
}
