package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pilgrimconnect/config"
	"pilgrimconnect/events"
	"pilgrimconnect/mq"
	"pilgrimconnect/notify"
	"pilgrimconnect/obs"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	shutdownTracer := obs.InitTracer("pilgrimconnect-notifyd")

	consumer, err := mq.NewConsumer(mq.ConsumerConfig{
		URL:      cfg.RabbitURL,
		Exchange: cfg.BookingExchange,
		Queue:    cfg.NotifyQueue,
		Bindings: []string{events.RKBookingConfirmed, events.RKBookingCancelled},
		DLXName:  cfg.BookingExchange + ".dlx",
		Tag:      "notifyd",
	})
	if err != nil {
		log.Fatalf("[notifyd] consumer: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := notify.NewDispatcher(consumer, notify.NewConsole())
	go func() {
		if err := dispatcher.Run(ctx); err != nil {
			log.Fatalf("[notifyd] dispatcher: %v", err)
		}
	}()
	log.Println("[notifyd] consuming booking events")

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	cancel()
	_ = shutdownTracer(context.Background())
	log.Println("[notifyd] stopped")
}
