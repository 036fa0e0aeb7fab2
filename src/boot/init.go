package boot

import (
	"log"
	"os"
	"strconv"
	"time"

	"etix/src/db"
	"etix/src/lib"
	"etix/src/models"
	"etix/src/types"

	"gorm.io/gorm"
)

const PaymentUpdatesTopic = "payment-updates"

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Coupon{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	go lib.KafkaCreateTopics(PaymentUpdatesTopic)
}

// InitScheduler starts the background sweep that fails out bookings stuck in
// pending after the gateway session window has lapsed. Bookings that already
// reached a terminal state are never touched.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	id, err := lib.CreateCronJob(SweepStalePendingBookings, sweepInterval())
	if err != nil {
		log.Printf("Error scheduling sweep job: %s\n", err.Error())
		return
	}
	log.Printf("Scheduled pending sweep job: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

func sweepInterval() time.Duration {
	mins, err := strconv.Atoi(os.Getenv("PENDING_SWEEP_INTERVAL_MINUTES"))
	if err != nil || mins < 1 {
		mins = 30
	}
	return time.Duration(mins) * time.Minute
}

func pendingWindow() time.Duration {
	mins, err := strconv.Atoi(os.Getenv("PENDING_PAYMENT_WINDOW_MINUTES"))
	if err != nil || mins < 1 {
		mins = 120
	}
	return time.Duration(mins) * time.Minute
}

func SweepStalePendingBookings() {
	db := db.GetDb()
	cutoff := time.Now().Add(-pendingWindow())
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("payment_status = ?", types.PAYMENT_PENDING).
			Where("payment_id <> ''").
			Where("updated_at < ?", cutoff).
			Update("payment_status", types.PAYMENT_FAILED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Printf("Marked %d stale pending bookings as failed\n", res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error while sweeping pending bookings: %s\n", err.Error())
	}
}
