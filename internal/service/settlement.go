package service

import (
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"
)

// Тарифы в таках. Единственный источник сумм для всех переходов.
const (
	CompletionFee    = 50.0 // сбор за завершенную парковку
	CancellationFine = 10.0 // штраф за отмену пользователем
	ExpiryFine       = 10.0 // штраф за просроченное бронирование

	FeedbackRewardPoints   = 10  // баллы за отзыв
	PointsPerUnpaidBooking = 100 // стоимость одного бронирования в баллах
)

// settlementAmount maps a finalizing transition to the amount owed.
// Admin cancellation carries no fine.
func settlementAmount(target entity.BookingStatus, byAdmin bool) float64 {
	switch target {
	case entity.BookingStatusCompleted:
		return CompletionFee
	case entity.BookingStatusCancelled:
		if byAdmin {
			return 0
		}
		return CancellationFine
	case entity.BookingStatusExpired:
		return ExpiryFine
	default:
		return 0
	}
}
