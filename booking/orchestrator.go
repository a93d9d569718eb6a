package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"pilgrimconnect/catalog"
	"pilgrimconnect/events"
	"pilgrimconnect/ledger"
	"pilgrimconnect/models"
	"pilgrimconnect/utils"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrTempleClosed   = errors.New("temple_closed")
	ErrSlotFull       = errors.New("slot_full")

	// ErrAlreadyCancelled makes a second cancel a no-op instead of a
	// ledger-corrupting double release.
	ErrAlreadyCancelled = errors.New("already_cancelled")
	ErrNotCancellable   = errors.New("not_cancellable")

	ErrServiceUnavailable = errors.New("service_unavailable")
)

// HorizonDays is how far ahead a visit may be booked: tomorrow through
// tomorrow+HorizonDays-1, same window the booking form offers.
const HorizonDays = 7

const persistAttempts = 3

// Publisher is what the orchestrator needs from mq.Publisher.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Orchestrator turns a booking request into a durable Booking row plus
// a ledger reservation, all-or-nothing. It is the only writer of
// booking status transitions on the user path.
type Orchestrator struct {
	db  *gorm.DB
	led *ledger.Ledger
	pub Publisher

	// test seam; defaults to time.Now
	now func() time.Time
}

func NewOrchestrator(db *gorm.DB, led *ledger.Ledger, pub Publisher) *Orchestrator {
	return &Orchestrator{db: db, led: led, pub: pub, now: time.Now}
}

type BookRequest struct {
	UserID           uint
	PilgrimID        uint
	TempleID         uint
	Date             string // "2006-01-02"
	SlotStart        string // "HH:MM"
	PartySize        int
	PriorityCategory string
	SpecialNeeds     string
}

func (r BookRequest) validate(now time.Time) error {
	if r.PilgrimID == 0 || r.TempleID == 0 || r.Date == "" || r.SlotStart == "" {
		return fmt.Errorf("%w: missing required fields", ErrInvalidRequest)
	}
	if r.PartySize < 1 {
		return fmt.Errorf("%w: party size must be at least 1", ErrInvalidRequest)
	}
	d, err := time.ParseInLocation("2006-01-02", r.Date, now.Location())
	if err != nil {
		return fmt.Errorf("%w: bad date %q", ErrInvalidRequest, r.Date)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !d.After(today) {
		return fmt.Errorf("%w: date must be in the future", ErrInvalidRequest)
	}
	if d.After(today.AddDate(0, 0, HorizonDays)) {
		return fmt.Errorf("%w: date beyond %d-day booking window", ErrInvalidRequest, HorizonDays)
	}
	return nil
}

// Book validates the request, reserves seats in the ledger, persists
// the booking and issues a ticket. A failed reservation creates no
// booking row; a failed persist releases the reservation. Once the
// pending row exists, later failures are left for the sweep so the
// caller and the sweep never race on release.
func (o *Orchestrator) Book(ctx context.Context, req BookRequest) (*models.Booking, error) {
	if err := req.validate(o.now()); err != nil {
		return nil, err
	}

	var temple models.Temple
	if err := o.db.WithContext(ctx).First(&temple, req.TempleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown temple %d", ErrInvalidRequest, req.TempleID)
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	var pilgrim models.Pilgrim
	if err := o.db.WithContext(ctx).First(&pilgrim, req.PilgrimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown pilgrim %d", ErrInvalidRequest, req.PilgrimID)
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if req.UserID != 0 && pilgrim.UserID != 0 && pilgrim.UserID != req.UserID {
		return nil, fmt.Errorf("%w: pilgrim does not belong to this account", ErrInvalidRequest)
	}

	slot, ok := catalog.FindSlot(temple, req.SlotStart)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a slot at %s", ErrTempleClosed, req.SlotStart, temple.Name)
	}

	key := ledger.SlotKey{TempleID: temple.ID, Date: req.Date, SlotStart: req.SlotStart}
	tok, err := o.led.Reserve(ctx, key, req.PartySize, slot.Capacity)
	if err != nil {
		if errors.Is(err, ledger.ErrCapacityExceeded) {
			return nil, ErrSlotFull
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	b := models.Booking{
		UserID:           req.UserID,
		PilgrimID:        pilgrim.ID,
		TempleID:         temple.ID,
		Date:             req.Date,
		SlotStart:        req.SlotStart,
		PartySize:        req.PartySize,
		PriorityCategory: defaultStr(req.PriorityCategory, "none"),
		SpecialNeeds:     defaultStr(req.SpecialNeeds, "None"),
		PilgrimName:      pilgrim.FullName,
		Status:           models.BookingPending,
		TokenID:          tok.ID,
	}
	if err := o.persistWithRetry(ctx, &b); err != nil {
		// SlotFull must never leave a partial reservation.
		if rerr := o.led.Release(ctx, tok.ID); rerr != nil && !errors.Is(rerr, ledger.ErrInvalidToken) {
			log.Printf("[booking] release after failed persist: %v", rerr)
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	ticket, err := utils.GenerateTicketNumber(req.Date)
	if err != nil {
		// Booking stays pending; the reconciliation sweep owns the
		// release from here so we do not race it.
		return nil, fmt.Errorf("%w: could not issue ticket: %v", ErrServiceUnavailable, err)
	}
	// Guarded on pending: if the sweep got here first the booking is
	// already cancelled and must not come back to life.
	res := o.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", b.ID, models.BookingPending).
		Updates(map[string]interface{}{"ticket_number": ticket, "status": models.BookingConfirmed})
	if res.Error != nil {
		return nil, fmt.Errorf("%w: could not confirm booking: %v", ErrServiceUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: booking timed out before confirmation", ErrServiceUnavailable)
	}
	b.TicketNumber = &ticket
	b.Status = models.BookingConfirmed

	// Fire-and-forget; retry is the dispatcher's job and a failed
	// publish must never un-reserve seats.
	if o.pub != nil {
		if perr := o.pub.PublishJSON(ctx, events.RKBookingConfirmed, events.BookingConfirmed{
			BookingID:    b.ID,
			TicketNumber: ticket,
			PilgrimName:  pilgrim.FullName,
			PilgrimPhone: pilgrim.Phone,
			TempleName:   temple.Name,
			Date:         b.Date,
			Slot:         b.SlotStart,
			PartySize:    b.PartySize,
		}); perr != nil {
			log.Printf("[booking] publish confirmed event: %v", perr)
		}
	}

	return &b, nil
}

func (o *Orchestrator) persistWithRetry(ctx context.Context, b *models.Booking) error {
	var err error
	for attempt := 0; attempt < persistAttempts; attempt++ {
		if err = o.db.WithContext(ctx).Create(b).Error; err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	return err
}

// Cancel releases the booking's seats and marks it cancelled. Valid
// from pending or confirmed only; repeating it reports
// ErrAlreadyCancelled without touching the ledger again.
func (o *Orchestrator) Cancel(ctx context.Context, bookingID, userID uint, asAdmin bool) (*models.Booking, error) {
	var b models.Booking
	q := o.db.WithContext(ctx).Preload("Pilgrim")
	if !asAdmin {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.First(&b, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %d not found", ErrInvalidRequest, bookingID)
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	switch b.Status {
	case models.BookingCancelled:
		return &b, ErrAlreadyCancelled
	case models.BookingPending, models.BookingConfirmed:
		// fall through
	default:
		return nil, fmt.Errorf("%w: booking is %s", ErrNotCancellable, b.Status)
	}

	if err := o.led.Release(ctx, b.TokenID); err != nil && !errors.Is(err, ledger.ErrInvalidToken) {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if err := o.db.WithContext(ctx).Model(&b).Update("status", models.BookingCancelled).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	b.Status = models.BookingCancelled

	if o.pub != nil {
		if perr := o.pub.PublishJSON(ctx, events.RKBookingCancelled, events.BookingCancelled{
			BookingID:    b.ID,
			TicketNumber: ticketValue(b.TicketNumber),
			PilgrimPhone: b.Pilgrim.Phone,
			Reason:       "user",
		}); perr != nil {
			log.Printf("[booking] publish cancelled event: %v", perr)
		}
	}
	return &b, nil
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ticketValue flattens the nullable ticket column; a never-confirmed
// booking has no ticket.
func ticketValue(t *string) string {
	if t == nil {
		return ""
	}
	return *t
}
