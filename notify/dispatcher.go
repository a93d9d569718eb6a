package notify

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"pilgrimconnect/events"
	"pilgrimconnect/mq"
)

// Dispatcher consumes booking events and turns them into pilgrim
// notifications. Retry lives here: transient failures are Nack'd back
// onto the queue, poison messages eventually land on the DLQ. The
// booking core never waits for any of this.
type Dispatcher struct {
	consumer *mq.Consumer
	notifier Notifier
}

func NewDispatcher(consumer *mq.Consumer, n Notifier) *Dispatcher {
	return &Dispatcher{consumer: consumer, notifier: n}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	msgs, err := d.consumer.Deliveries(ctx)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := d.handle(m); err != nil {
				log.Printf("[notify] handle key=%s err=%v -> nack", m.RoutingKey, err)
				_ = m.Nack(false, true)
				continue
			}
			_ = m.Ack(false)
		}
	}
}

func (d *Dispatcher) handle(m amqp.Delivery) error {
	switch m.RoutingKey {
	case events.RKBookingConfirmed:
		ev, err := events.Unmarshal[events.BookingConfirmed](m.Body)
		if err != nil {
			return err
		}
		return d.notifier.Notify(ev.PilgrimPhone, "Darshan Confirmed",
			fmt.Sprintf("%s, your darshan at %s on %s (%s, party of %d) is confirmed. Ticket %s.",
				ev.PilgrimName, ev.TempleName, ev.Date, ev.Slot, ev.PartySize, ev.TicketNumber))

	case events.RKBookingCancelled:
		ev, err := events.Unmarshal[events.BookingCancelled](m.Body)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("Booking %d has been cancelled.", ev.BookingID)
		if ev.TicketNumber != "" {
			msg = fmt.Sprintf("Booking %d (ticket %s) has been cancelled.", ev.BookingID, ev.TicketNumber)
		}
		return d.notifier.Notify(ev.PilgrimPhone, "Darshan Cancelled", msg)

	default:
		// Unknown key: log and ack, nothing to retry.
		log.Printf("[notify] skip unknown key=%s", m.RoutingKey)
		return nil
	}
}
