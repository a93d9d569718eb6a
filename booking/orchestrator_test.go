package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pilgrimconnect/events"
	"pilgrimconnect/ledger"
	"pilgrimconnect/models"
)

type fakePublisher struct {
	mu       sync.Mutex
	keys     []string
	payloads []any
}

func (f *fakePublisher) PublishJSON(ctx context.Context, key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	f.payloads = append(f.payloads, v)
	return nil
}

func (f *fakePublisher) published(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, k := range f.keys {
		if k == key {
			n++
		}
	}
	return n
}

func (f *fakePublisher) last(key string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.keys) - 1; i >= 0; i-- {
		if f.keys[i] == key {
			return f.payloads[i]
		}
	}
	return nil
}

type testEnv struct {
	db  *gorm.DB
	led *ledger.Ledger
	orc *Orchestrator
	pub *fakePublisher

	temple  models.Temple
	pilgrim models.Pilgrim
}

// testNow is the frozen clock every test books against.
var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{}, &models.Temple{}, &models.Pilgrim{}, &models.Booking{},
		&models.SlotLedger{}, &models.ReservationToken{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	led := ledger.New(db)
	pub := &fakePublisher{}
	orc := NewOrchestrator(db, led, pub)
	orc.now = func() time.Time { return testNow }

	env := &testEnv{db: db, led: led, orc: orc, pub: pub}

	env.temple = models.Temple{
		Name:                "Test Temple",
		OpeningTime:         "06:00",
		ClosingTime:         "10:00",
		SlotDurationMinutes: 60,
		SlotCapacity:        2,
	}
	if err := db.Create(&env.temple).Error; err != nil {
		t.Fatalf("create temple: %v", err)
	}

	env.pilgrim = models.Pilgrim{
		UserID:   1,
		FullName: "Ananya Sharma",
		Phone:    "+919800000001",
		Age:      34,
		IDType:   "aadhaar",
		IDNumber: "1234-5678-9012",
	}
	if err := db.Create(&env.pilgrim).Error; err != nil {
		t.Fatalf("create pilgrim: %v", err)
	}

	return env
}

func (e *testEnv) request() BookRequest {
	return BookRequest{
		UserID:    1,
		PilgrimID: e.pilgrim.ID,
		TempleID:  e.temple.ID,
		Date:      "2026-09-02",
		SlotStart: "06:00",
		PartySize: 1,
	}
}

func TestBookConfirmsAndReservesSeats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.orc.Book(ctx, env.request())
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}
	if b.Status != models.BookingConfirmed {
		t.Errorf("status = %q, want confirmed", b.Status)
	}
	if b.TicketNumber == nil || !strings.HasPrefix(*b.TicketNumber, "DSN-20260902-") {
		t.Errorf("ticket = %v, want DSN-20260902- prefix", b.TicketNumber)
	}
	if b.TokenID == "" {
		t.Error("booking has no reservation token")
	}

	reserved, capacity, err := env.led.Occupancy(ctx, ledger.SlotKey{
		TempleID: env.temple.ID, Date: "2026-09-02", SlotStart: "06:00",
	})
	if err != nil {
		t.Fatalf("Occupancy() error: %v", err)
	}
	if reserved != 1 || capacity != 2 {
		t.Errorf("occupancy = %d/%d, want 1/2", reserved, capacity)
	}

	if got := env.pub.published(events.RKBookingConfirmed); got != 1 {
		t.Errorf("confirmed events published = %d, want 1", got)
	}
}

func TestBookValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	otherPilgrim := models.Pilgrim{UserID: 99, FullName: "Someone Else", Phone: "+911111111111"}
	if err := env.db.Create(&otherPilgrim).Error; err != nil {
		t.Fatalf("create pilgrim: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*BookRequest)
	}{
		{"zero party size", func(r *BookRequest) { r.PartySize = 0 }},
		{"missing slot", func(r *BookRequest) { r.SlotStart = "" }},
		{"bad date", func(r *BookRequest) { r.Date = "02-09-2026" }},
		{"today", func(r *BookRequest) { r.Date = "2026-09-01" }},
		{"past date", func(r *BookRequest) { r.Date = "2026-08-15" }},
		{"beyond horizon", func(r *BookRequest) { r.Date = "2026-09-09" }},
		{"unknown temple", func(r *BookRequest) { r.TempleID = 999 }},
		{"unknown pilgrim", func(r *BookRequest) { r.PilgrimID = 999 }},
		{"foreign pilgrim", func(r *BookRequest) { r.PilgrimID = otherPilgrim.ID }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := env.request()
			tc.mutate(&req)
			if _, err := env.orc.Book(ctx, req); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Book() error = %v, want ErrInvalidRequest", err)
			}
		})
	}

	// Last day of the window is still bookable.
	req := env.request()
	req.Date = "2026-09-08"
	if _, err := env.orc.Book(ctx, req); err != nil {
		t.Errorf("Book(horizon edge) error: %v", err)
	}
}

func TestBookRejectsOffGridSlot(t *testing.T) {
	env := newTestEnv(t)

	req := env.request()
	req.SlotStart = "06:30"
	if _, err := env.orc.Book(context.Background(), req); !errors.Is(err, ErrTempleClosed) {
		t.Errorf("Book() error = %v, want ErrTempleClosed", err)
	}
}

func TestConcurrentBookingsOnlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Capacity 2, two simultaneous parties of 2: exactly one fits.
	var wg sync.WaitGroup
	var mu sync.Mutex
	confirmed, full := 0, 0

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := env.request()
			req.PartySize = 2
			_, err := env.orc.Book(ctx, req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				confirmed++
			case errors.Is(err, ErrSlotFull):
				full++
			default:
				t.Errorf("Book() unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if confirmed != 1 || full != 1 {
		t.Fatalf("confirmed=%d full=%d, want 1/1", confirmed, full)
	}

	reserved, _, err := env.led.Occupancy(ctx, ledger.SlotKey{
		TempleID: env.temple.ID, Date: "2026-09-02", SlotStart: "06:00",
	})
	if err != nil {
		t.Fatalf("Occupancy() error: %v", err)
	}
	if reserved != 2 {
		t.Errorf("reserved = %d, want 2", reserved)
	}

	var count int64
	env.db.Model(&models.Booking{}).Where("status = ?", models.BookingConfirmed).Count(&count)
	if count != 1 {
		t.Errorf("confirmed bookings in db = %d, want 1", count)
	}
}

func TestCancelReleasesSeats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.orc.Book(ctx, env.request())
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	cancelled, err := env.orc.Cancel(ctx, b.ID, 1, false)
	if err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if cancelled.Status != models.BookingCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}

	reserved, _, err := env.led.Occupancy(ctx, ledger.SlotKey{
		TempleID: env.temple.ID, Date: "2026-09-02", SlotStart: "06:00",
	})
	if err != nil {
		t.Fatalf("Occupancy() error: %v", err)
	}
	if reserved != 0 {
		t.Errorf("reserved = %d after cancel, want 0", reserved)
	}
	if got := env.pub.published(events.RKBookingCancelled); got != 1 {
		t.Errorf("cancelled events published = %d, want 1", got)
	}
	ev, ok := env.pub.last(events.RKBookingCancelled).(events.BookingCancelled)
	if !ok {
		t.Fatal("cancelled event payload has the wrong type")
	}
	if ev.PilgrimPhone == "" {
		t.Error("cancelled event has no pilgrim phone; notification would have no recipient")
	}
	if ev.TicketNumber == "" {
		t.Error("cancelled event for a confirmed booking carries no ticket number")
	}

	// Cancelling again is a reported no-op, and never double-credits.
	if _, err := env.orc.Cancel(ctx, b.ID, 1, false); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("second Cancel() error = %v, want ErrAlreadyCancelled", err)
	}
	reserved, _, _ = env.led.Occupancy(ctx, ledger.SlotKey{
		TempleID: env.temple.ID, Date: "2026-09-02", SlotStart: "06:00",
	})
	if reserved != 0 {
		t.Errorf("reserved = %d after repeat cancel, want 0", reserved)
	}
}

func TestCancelScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.orc.Book(ctx, env.request())
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	if _, err := env.orc.Cancel(ctx, b.ID, 42, false); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Cancel(wrong user) error = %v, want ErrInvalidRequest", err)
	}

	// Admin path ignores ownership.
	if _, err := env.orc.Cancel(ctx, b.ID, 0, true); err != nil {
		t.Errorf("Cancel(asAdmin) error: %v", err)
	}
}

func TestCancelRejectsTerminalStatuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.orc.Book(ctx, env.request())
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}
	if err := env.db.Model(b).Update("status", models.BookingCompleted).Error; err != nil {
		t.Fatalf("update status: %v", err)
	}

	if _, err := env.orc.Cancel(ctx, b.ID, 1, false); !errors.Is(err, ErrNotCancellable) {
		t.Errorf("Cancel(completed) error = %v, want ErrNotCancellable", err)
	}
}

func TestSweepCancelsStalePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	key := ledger.SlotKey{TempleID: env.temple.ID, Date: "2026-09-02", SlotStart: "06:00"}
	tok, err := env.led.Reserve(ctx, key, 2, 2)
	if err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}
	stale := models.Booking{
		UserID:    1,
		PilgrimID: env.pilgrim.ID,
		TempleID:  env.temple.ID,
		Date:      "2026-09-02",
		SlotStart: "06:00",
		PartySize: 2,
		Status:    models.BookingPending,
		TokenID:   tok.ID,
	}
	if err := env.db.Create(&stale).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}
	old := time.Now().Add(-time.Hour)
	if err := env.db.Model(&stale).Update("created_at", old).Error; err != nil {
		t.Fatalf("backdate booking: %v", err)
	}

	sweeper := NewSweeper(env.db, env.led, env.pub, 10*time.Minute, time.Minute)
	n, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("SweepOnce() error: %v", err)
	}
	if n != 1 {
		t.Fatalf("swept = %d, want 1", n)
	}

	var after models.Booking
	if err := env.db.First(&after, stale.ID).Error; err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if after.Status != models.BookingCancelled {
		t.Errorf("status = %q, want cancelled", after.Status)
	}

	reserved, _, err := env.led.Occupancy(ctx, key)
	if err != nil {
		t.Fatalf("Occupancy() error: %v", err)
	}
	if reserved != 0 {
		t.Errorf("reserved = %d after sweep, want 0", reserved)
	}
	if got := env.pub.published(events.RKBookingCancelled); got != 1 {
		t.Errorf("cancelled events published = %d, want 1", got)
	}
	ev, ok := env.pub.last(events.RKBookingCancelled).(events.BookingCancelled)
	if !ok {
		t.Fatal("cancelled event payload has the wrong type")
	}
	if ev.PilgrimPhone == "" {
		t.Error("sweep cancellation event has no pilgrim phone")
	}
	if ev.Reason != "sweep" {
		t.Errorf("reason = %q, want sweep", ev.Reason)
	}

	// The freed seats are immediately bookable again.
	req := env.request()
	req.PartySize = 2
	if _, err := env.orc.Book(ctx, req); err != nil {
		t.Errorf("Book() after sweep error: %v", err)
	}
}

// Pending rows have no ticket yet; any number of them must coexist
// without tripping the unique ticket index, including rows the sweep
// already cancelled.
func TestTicketlessBookingsCoexist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b := models.Booking{
			UserID:    1,
			PilgrimID: env.pilgrim.ID,
			TempleID:  env.temple.ID,
			Date:      "2026-09-02",
			SlotStart: "06:00",
			PartySize: 1,
			Status:    models.BookingPending,
		}
		if err := env.db.Create(&b).Error; err != nil {
			t.Fatalf("create pending booking %d: %v", i, err)
		}
	}

	var cancelled models.Booking
	env.db.First(&cancelled)
	if err := env.db.Model(&cancelled).Update("status", models.BookingCancelled).Error; err != nil {
		t.Fatalf("cancel booking: %v", err)
	}

	// A fresh booking must still confirm alongside the ticketless rows.
	if _, err := env.orc.Book(ctx, env.request()); err != nil {
		t.Errorf("Book() with ticketless rows present: %v", err)
	}
}

func TestSweepLeavesFreshPendingAlone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	key := ledger.SlotKey{TempleID: env.temple.ID, Date: "2026-09-02", SlotStart: "07:00"}
	tok, err := env.led.Reserve(ctx, key, 1, 2)
	if err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}
	fresh := models.Booking{
		UserID:    1,
		PilgrimID: env.pilgrim.ID,
		TempleID:  env.temple.ID,
		Date:      "2026-09-02",
		SlotStart: "07:00",
		PartySize: 1,
		Status:    models.BookingPending,
		TokenID:   tok.ID,
	}
	if err := env.db.Create(&fresh).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}

	sweeper := NewSweeper(env.db, env.led, env.pub, 10*time.Minute, time.Minute)
	n, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("SweepOnce() error: %v", err)
	}
	if n != 0 {
		t.Errorf("swept = %d, want 0", n)
	}

	var after models.Booking
	env.db.First(&after, fresh.ID)
	if after.Status != models.BookingPending {
		t.Errorf("status = %q, want still pending", after.Status)
	}
}
