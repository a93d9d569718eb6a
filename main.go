package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"pilgrimconnect/booking"
	"pilgrimconnect/config"
	"pilgrimconnect/ledger"
	"pilgrimconnect/models"
	"pilgrimconnect/mq"
	"pilgrimconnect/obs"
	"pilgrimconnect/routes"
	"pilgrimconnect/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	utils.InitJWT(cfg.JWTSecret)

	config.ConnectDatabase(cfg)
	db := config.DB

	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	utils.SeedTemples()

	shutdownTracer := obs.InitTracer("pilgrimconnect-api")

	pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer pub.Close()

	led := ledger.New(db)
	orc := booking.NewOrchestrator(db, led, pub)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := booking.NewSweeper(db, led, pub,
		time.Duration(cfg.PendingTimeoutMin)*time.Minute,
		time.Duration(cfg.SweepIntervalMin)*time.Minute)
	go sweeper.Run(ctx)

	r := routes.SetupRouter(db, orc, led)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Printf("server running on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Printf("tracer shutdown: %v", err)
	}
	os.Exit(0)
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{}, &models.Admin{}, &models.RefreshToken{},
		&models.Temple{}, &models.Pilgrim{}, &models.Booking{},
		&models.SlotLedger{}, &models.ReservationToken{},
	)
}
