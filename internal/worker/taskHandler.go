package worker

import (
	"context"
	"fmt"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/service"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/pkg/queue"

	"github.com/sirupsen/logrus"
)

// TaskHandler исполняет задачи из очереди Redis
type TaskHandler struct {
	bookingService service.BookingService
}

func NewTaskHandler(bookingService service.BookingService) *TaskHandler {
	return &TaskHandler{bookingService: bookingService}
}

// Handle обрабатывает одну задачу очереди
func (h *TaskHandler) Handle(task *queue.Task) error {
	ctx := context.Background()

	switch task.Type {
	case service.TaskTypeExpireBooking:
		return h.handleExpireBooking(ctx, task)
	case service.TaskTypeExpirySweep:
		expired, err := h.bookingService.ExpireOverdueBookings(ctx)
		if err != nil {
			return err
		}
		logrus.Infof("Queue sweep expired %d bookings", expired)
		return nil
	default:
		return fmt.Errorf("invalid task type: %s", task.Type)
	}
}

// handleExpireBooking истекает одно бронирование по его идентификатору.
// Уже финализированное бронирование истекается вхолостую, поэтому
// повтор задачи безопасен.
func (h *TaskHandler) handleExpireBooking(ctx context.Context, task *queue.Task) error {
	bookingID, ok := task.IntData("booking_id")
	if !ok {
		return fmt.Errorf("invalid task data: missing booking_id")
	}

	if err := h.bookingService.ExpireBooking(ctx, bookingID); err != nil {
		return fmt.Errorf("failed to expire booking %d: %w", bookingID, err)
	}

	logrus.Debugf("Expiry task processed for booking %d", bookingID)
	return nil
}
