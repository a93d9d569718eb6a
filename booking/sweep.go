package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"pilgrimconnect/events"
	"pilgrimconnect/ledger"
	"pilgrimconnect/models"
)

// Sweeper is the reconciliation pass that cancels bookings stuck in
// pending past the timeout and returns their seats to the ledger. A
// crashed request can hold capacity for at most one sweep interval.
// The sweep is the only authority that releases a timed-out pending
// reservation; the original caller never does.
type Sweeper struct {
	db       *gorm.DB
	led      *ledger.Ledger
	pub      Publisher
	timeout  time.Duration
	interval time.Duration
}

func NewSweeper(db *gorm.DB, led *ledger.Ledger, pub Publisher, timeout, interval time.Duration) *Sweeper {
	return &Sweeper{db: db, led: led, pub: pub, timeout: timeout, interval: interval}
}

// Run sweeps on a fixed interval until the context is cancelled.
// Errors are logged and the next tick retries; a skipped or failed
// pass costs nothing because SweepOnce is idempotent.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				log.Printf("[sweep] pass failed: %v", err)
			} else if n > 0 {
				log.Printf("[sweep] released %d stale pending booking(s)", n)
			}
		}
	}
}

// SweepOnce releases and cancels every pending booking older than the
// timeout. Safe to run concurrently with live traffic: the token
// release is single-claim, and the status flip is guarded on the row
// still being pending.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.timeout)

	var stale []models.Booking
	if err := s.db.WithContext(ctx).Preload("Pilgrim").
		Where("status = ? AND created_at < ?", models.BookingPending, cutoff).
		Find(&stale).Error; err != nil {
		return 0, err
	}

	swept := 0
	for _, b := range stale {
		// Claim the booking before touching the ledger so a late
		// confirmation cannot end up holding zero seats.
		res := s.db.WithContext(ctx).Model(&models.Booking{}).
			Where("id = ? AND status = ?", b.ID, models.BookingPending).
			Update("status", models.BookingCancelled)
		if res.Error != nil {
			log.Printf("[sweep] cancel booking %d: %v", b.ID, res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			// Someone confirmed or cancelled it in the meantime.
			continue
		}
		if err := s.led.Release(ctx, b.TokenID); err != nil && !errors.Is(err, ledger.ErrInvalidToken) {
			log.Printf("[sweep] release token for booking %d: %v", b.ID, err)
		}
		swept++

		if s.pub != nil {
			if perr := s.pub.PublishJSON(ctx, events.RKBookingCancelled, events.BookingCancelled{
				BookingID:    b.ID,
				PilgrimPhone: b.Pilgrim.Phone,
				Reason:       "sweep",
			}); perr != nil {
				log.Printf("[sweep] publish cancelled event: %v", perr)
			}
		}
	}
	return swept, nil
}
