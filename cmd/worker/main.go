package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Rohith-2027/cab-booking-backend/internal/database"
	"github.com/Rohith-2027/cab-booking-backend/internal/dispatch"
	"github.com/Rohith-2027/cab-booking-backend/internal/services"
)

const sweepInterval = time.Minute

// The worker runs the scheduled sweeps: rejecting stale requests,
// delivering leftover cancellation notices and closing expired shifts.
// Multiple workers can run side by side; SKIP LOCKED keeps their
// sweeps from stepping on each other.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	database.InitDB()
	services.InitRedis()
	engine := dispatch.NewEngine(database.DB, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	log.Printf("Worker started, sweeping every %s", sweepInterval)
	runSweeps(ctx, engine)

	for {
		select {
		case <-ctx.Done():
			log.Println("Worker shutting down")
			return
		case <-ticker.C:
			runSweeps(ctx, engine)
		}
	}
}

func runSweeps(ctx context.Context, engine *dispatch.Engine) {
	now := time.Now()

	if n, err := engine.ExpireStaleRequests(ctx, now); err != nil {
		log.Printf("ExpireStaleRequests failed: %v", err)
	} else if n > 0 {
		log.Printf("Rejected %d stale booking requests", n)
	}

	if n, err := engine.SendFinalNotifications(ctx); err != nil {
		log.Printf("SendFinalNotifications failed: %v", err)
	} else if n > 0 {
		log.Printf("Sent %d final notifications", n)
	}

	if drivers, err := engine.DeactivateExpiredShifts(ctx, now); err != nil {
		log.Printf("DeactivateExpiredShifts failed: %v", err)
	} else if len(drivers) > 0 {
		for _, driverID := range drivers {
			if err := services.InvalidateDriverAvailability(ctx, driverID); err != nil {
				log.Printf("Failed to invalidate availability cache for driver %d: %v", driverID, err)
			}
		}
		log.Printf("Closed %d expired shifts", len(drivers))
	}
}
