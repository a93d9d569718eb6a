package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pilgrimconnect/models"
)

var (
	// ErrCapacityExceeded is the expected outcome of reserving into a
	// full slot; callers surface it as SlotFull.
	ErrCapacityExceeded = errors.New("slot_capacity_exceeded")

	// ErrInvalidToken covers unknown tokens and double releases. A
	// second release never credits the slot twice.
	ErrInvalidToken = errors.New("invalid_reservation_token")

	// ErrCapacityBelowReserved rejects an administrative capacity
	// change that would drop a slot below its already-reserved count.
	ErrCapacityBelowReserved = errors.New("capacity_below_reserved")
)

// SlotKey identifies the unit of capacity accounting. Derived, never
// stored as its own entity.
type SlotKey struct {
	TempleID  uint
	Date      string // "2006-01-02"
	SlotStart string // "HH:MM"
}

// Ledger is the single source of truth for per-slot occupancy. All
// reserved_count mutations go through Reserve and Release; contention
// is scoped to the single ledger row, so bookings for different slots
// never block each other.
type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) Migrate() error {
	return l.db.AutoMigrate(&models.SlotLedger{}, &models.ReservationToken{})
}

// Reserve atomically checks and claims partySize seats in the slot.
// The capacity argument seeds the ledger row on first touch; an
// existing row keeps its stored capacity so that administrative
// changes apply prospectively only.
func (l *Ledger) Reserve(ctx context.Context, key SlotKey, partySize, capacity int) (*models.ReservationToken, error) {
	if partySize < 1 {
		return nil, fmt.Errorf("party size must be at least 1, got %d", partySize)
	}

	var tok models.ReservationToken
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.SlotLedger{
			TempleID:  key.TempleID,
			Date:      key.Date,
			SlotStart: key.SlotStart,
			Capacity:  capacity,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "temple_id"}, {Name: "date"}, {Name: "slot_start"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("ensure ledger row: %w", err)
		}

		// Guarded single-statement increment: the capacity check and
		// the bump commit or fail together, so two concurrent reserves
		// that would jointly overflow can never both apply.
		res := tx.Model(&models.SlotLedger{}).
			Where("temple_id = ? AND date = ? AND slot_start = ?", key.TempleID, key.Date, key.SlotStart).
			Where("reserved_count + ? <= capacity", partySize).
			Update("reserved_count", gorm.Expr("reserved_count + ?", partySize))
		if res.Error != nil {
			return fmt.Errorf("reserve seats: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrCapacityExceeded
		}

		var cur models.SlotLedger
		if err := tx.Where("temple_id = ? AND date = ? AND slot_start = ?",
			key.TempleID, key.Date, key.SlotStart).Take(&cur).Error; err != nil {
			return err
		}
		tok = models.ReservationToken{
			ID:        uuid.NewString(),
			LedgerID:  cur.ID,
			PartySize: partySize,
		}
		return tx.Create(&tok).Error
	})
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// Release returns the token's seats to the slot. The token is claimed
// in the same statement that checks it is unreleased, so a concurrent
// or repeated release gets ErrInvalidToken instead of double-crediting.
func (l *Ledger) Release(ctx context.Context, tokenID string) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&models.ReservationToken{}).
			Where("id = ? AND released_at IS NULL", tokenID).
			Update("released_at", now)
		if res.Error != nil {
			return fmt.Errorf("claim token: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidToken
		}

		var tok models.ReservationToken
		if err := tx.Take(&tok, "id = ?", tokenID).Error; err != nil {
			return err
		}
		return tx.Model(&models.SlotLedger{}).
			Where("id = ?", tok.LedgerID).
			Update("reserved_count", gorm.Expr(
				"CASE WHEN reserved_count >= ? THEN reserved_count - ? ELSE 0 END",
				tok.PartySize, tok.PartySize)).Error
	})
}

// Occupancy returns the reserved/capacity snapshot for one slot.
// A slot nobody has touched yet has no row; gorm.ErrRecordNotFound is
// passed through and the caller falls back to the configured capacity.
func (l *Ledger) Occupancy(ctx context.Context, key SlotKey) (reserved, capacity int, err error) {
	var row models.SlotLedger
	err = l.db.WithContext(ctx).
		Where("temple_id = ? AND date = ? AND slot_start = ?", key.TempleID, key.Date, key.SlotStart).
		Take(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.ReservedCount, row.Capacity, nil
}

// ApplyCapacity updates the stored capacity of every ledger row for
// the temple from fromDate on. Rows whose reserved_count already
// exceeds the new capacity make the whole change fail with
// ErrCapacityBelowReserved; confirmed bookings are never invalidated
// retroactively.
func (l *Ledger) ApplyCapacity(ctx context.Context, templeID uint, fromDate string, newCapacity int) error {
	if newCapacity < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", newCapacity)
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Guarded update first, then count the rows the guard skipped.
		// Counting violations explicitly keeps this independent of
		// whether the driver reports matched or changed rows.
		if err := tx.Model(&models.SlotLedger{}).
			Where("temple_id = ? AND date >= ? AND reserved_count <= ?", templeID, fromDate, newCapacity).
			Update("capacity", newCapacity).Error; err != nil {
			return err
		}
		var violating int64
		if err := tx.Model(&models.SlotLedger{}).
			Where("temple_id = ? AND date >= ? AND reserved_count > ?", templeID, fromDate, newCapacity).
			Count(&violating).Error; err != nil {
			return err
		}
		if violating > 0 {
			// Rolls back the rows already updated in this transaction.
			return ErrCapacityBelowReserved
		}
		return nil
	})
}
