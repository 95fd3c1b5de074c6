package worker

import (
	"context"
	"time"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/service"

	"github.com/sirupsen/logrus"
)

// ExpiryWorker периодически истекает просроченные активные бронирования.
// Это страховочный контур поверх отложенных задач очереди: любое
// бронирование, чья задача потерялась, будет подхвачено меткой.
type ExpiryWorker struct {
	bookingService service.BookingService
	interval       time.Duration
}

func NewExpiryWorker(bookingService service.BookingService, interval time.Duration) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpiryWorker{
		bookingService: bookingService,
		interval:       interval,
	}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Booking expiry worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Booking expiry worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep выполняет один проход истечения просроченных бронирований
func (w *ExpiryWorker) sweep(ctx context.Context) {
	expired, err := w.bookingService.ExpireOverdueBookings(ctx)
	if err != nil {
		logrus.Errorf("Expiry sweep failed: %v", err)
		return
	}

	if expired > 0 {
		logrus.Infof("Expiry sweep completed: %d bookings expired", expired)
	} else {
		logrus.Debug("Expiry sweep completed: no overdue bookings")
	}
}
