package service

import (
	"context"
	"fmt"

	repository "github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/database/postgres"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/pkg/lock"

	"github.com/sirupsen/logrus"
)

type settlementService struct {
	userRepo    repository.UserRepository
	bookingRepo repository.BookingRepository
	paymentRepo repository.PaymentRepository
	locks       *lock.KeyedMutex
}

// NewSettlementService создает новый экземпляр SettlementService
func NewSettlementService(
	userRepo repository.UserRepository,
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	locks *lock.KeyedMutex,
) SettlementService {
	return &settlementService{
		userRepo:    userRepo,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		locks:       locks,
	}
}

// ProcessPayment проводит оплату всего накопленного долга пользователя.
// Наличные гасят pendingBalance целиком; оплата баллами стоит 100 баллов
// за каждое неоплаченное бронирование. На каждое погашенное бронирование
// создается отдельная запись Payment с его settlementAmount.
func (s *settlementService) ProcessPayment(ctx context.Context, userID int64, method entity.PaymentMethod) (*PaymentResult, error) {
	if method != entity.PaymentMethodCash && method != entity.PaymentMethodPoints {
		return nil, entity.ErrInvalidPaymentMethod
	}

	// Блокировка пользователя на все время оплаты, чтобы исключить
	// двойное списание при параллельных запросах
	key := lock.UserKey(userID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	unpaid, err := s.bookingRepo.GetUnpaidFinalized(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении неоплаченных бронирований: %w", err)
	}

	if user.PendingBalance <= 0 && len(unpaid) == 0 {
		return nil, entity.ErrNoPaymentDue
	}

	result := &PaymentResult{
		Method:       method,
		BookingsPaid: len(unpaid),
	}

	pointsCost := 0
	switch method {
	case entity.PaymentMethodCash:
		result.AmountPaid = user.PendingBalance
	case entity.PaymentMethodPoints:
		pointsCost = PointsPerUnpaidBooking * len(unpaid)
		result.PointsDeducted = pointsCost
	}

	// Списание, пометка бронирований и журнал — одна транзакция в
	// репозитории: либо все, либо ничего
	if err := s.paymentRepo.Settle(ctx, userID, unpaid, method, pointsCost); err != nil {
		return nil, err
	}

	logrus.Infof("Payment processed: user=%d, method=%s, bookings=%d", userID, method, len(unpaid))

	return result, nil
}

// GetPaymentSummary возвращает текущий долг и баллы пользователя
func (s *settlementService) GetPaymentSummary(ctx context.Context, userID int64) (*PaymentSummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	unpaid, err := s.bookingRepo.GetUnpaidFinalized(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении неоплаченных бронирований: %w", err)
	}

	return &PaymentSummary{
		PendingBalance: user.PendingBalance,
		Points:         user.Points,
		UnpaidBookings: len(unpaid),
	}, nil
}

// GetPaymentHistory возвращает журнал оплат пользователя
func (s *settlementService) GetPaymentHistory(ctx context.Context, userID int64) ([]*entity.Payment, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByUserID(ctx, userID)
}
