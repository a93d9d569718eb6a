package notify

import "log"

// Notifier is the delivery channel abstraction so SMS/email providers
// can slot in without touching the consumer.
type Notifier interface {
	Notify(recipient, subject, message string) error
}

// ConsoleNotifier logs the message; the default until an SMS gateway
// is wired up.
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Notify(recipient, subject, message string) error {
	log.Printf("[notify] to=%s %s :: %s", recipient, subject, message)
	return nil
}
