package service

import (
	"context"
	"fmt"
	"time"

	repository "github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/database/postgres"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/pkg/lock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type bookingService struct {
	bookingRepo     repository.BookingRepository
	userRepo        repository.UserRepository
	locationRepo    repository.LocationRepository
	inventory       InventoryService
	queue           TaskPublisher
	locks           *lock.KeyedMutex
	expiryThreshold time.Duration
	now             func() time.Time
}

// NewBookingService создает новый экземпляр BookingService
func NewBookingService(
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	locationRepo repository.LocationRepository,
	inventory InventoryService,
	queue TaskPublisher,
	locks *lock.KeyedMutex,
	expiryThreshold time.Duration,
) BookingService {
	if expiryThreshold <= 0 {
		expiryThreshold = time.Hour
	}
	return &bookingService{
		bookingRepo:     bookingRepo,
		userRepo:        userRepo,
		locationRepo:    locationRepo,
		inventory:       inventory,
		queue:           queue,
		locks:           locks,
		expiryThreshold: expiryThreshold,
		now:             time.Now,
	}
}

// CreateBooking бронирует одно место на парковке. Резервирование места
// и создание записи выполняются как одна логическая транзакция: при
// неудачной вставке резерв компенсируется обратным Release.
func (s *bookingService) CreateBooking(ctx context.Context, userID, locationID int64) (*entity.Booking, error) {
	userKey := lock.UserKey(userID)
	s.locks.Lock(userKey)
	defer s.locks.Unlock(userKey)

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	// Проверка существующего активного бронирования
	existing, err := s.bookingRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при проверке активных бронирований: %w", err)
	}
	if existing != nil {
		return nil, entity.ErrActiveBookingExists
	}

	// Сначала резерв места, затем запись
	if err := s.inventory.Reserve(ctx, locationID); err != nil {
		return nil, err
	}

	booking := &entity.Booking{
		UserID:      userID,
		LocationID:  locationID,
		BookingTime: s.now(),
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		// Компенсирующий возврат места
		if relErr := s.inventory.Release(ctx, locationID); relErr != nil {
			logrus.Errorf("Failed to release spot after create failure: %v", relErr)
		}
		return nil, err
	}

	booking.Location, _ = s.locationRepo.GetByID(ctx, locationID)

	logrus.Infof("Booking created: ID=%d, User=%d, Location=%d", booking.ID, userID, locationID)

	// Планируем отложенную задачу истечения, если очередь доступна
	if s.queue != nil {
		s.scheduleExpiryTask(ctx, booking)
	}

	return booking, nil
}

// scheduleExpiryTask планирует задачу истечения бронирования
func (s *bookingService) scheduleExpiryTask(ctx context.Context, booking *entity.Booking) {
	task := &Task{
		ID:   uuid.NewString(),
		Type: TaskTypeExpireBooking,
		Data: map[string]interface{}{
			"booking_id": booking.ID,
		},
		ExecuteAt:  booking.BookingTime.Add(s.expiryThreshold),
		MaxRetries: 3,
	}

	if err := s.queue.Publish(ctx, task); err != nil {
		// Фоновая метла все равно подхватит просроченное бронирование
		logrus.Errorf("Failed to schedule expiry task for booking %d: %v", booking.ID, err)
	}
}

func (s *bookingService) GetBooking(ctx context.Context, id int64) (*entity.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// GetUserBookings возвращает бронирования пользователя со снимком
// парковки. Перед выдачей применяется ленивое истечение: просроченное
// активное бронирование переводится в expired тем же идемпотентным
// путем, что и фоновая метла.
func (s *bookingService) GetUserBookings(ctx context.Context, userID int64) ([]*entity.Booking, error) {
	active, err := s.bookingRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при проверке активного бронирования: %w", err)
	}
	if active != nil && s.isOverdue(active) {
		if err := s.ExpireBooking(ctx, active.ID); err != nil {
			return nil, err
		}
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении бронирований пользователя: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) isOverdue(booking *entity.Booking) bool {
	return booking.Status == entity.BookingStatusActive &&
		s.now().Sub(booking.BookingTime) >= s.expiryThreshold
}

// CancelBooking отменяет активное бронирование пользователя со штрафом
func (s *bookingService) CancelBooking(ctx context.Context, bookingID, userID int64) (*entity.Booking, error) {
	return s.finalize(ctx, bookingID, userID, entity.BookingStatusCancelled, false)
}

// CompleteBooking завершает активное бронирование, начисляя сбор
func (s *bookingService) CompleteBooking(ctx context.Context, bookingID, userID int64) (*entity.Booking, error) {
	return s.finalize(ctx, bookingID, userID, entity.BookingStatusCompleted, false)
}

// AdminCancelBooking отменяет бронирование без штрафа
func (s *bookingService) AdminCancelBooking(ctx context.Context, bookingID int64) (*entity.Booking, error) {
	return s.finalize(ctx, bookingID, 0, entity.BookingStatusCancelled, true)
}

// finalize переводит бронирование из active в конечное состояние ровно
// один раз: проигравший гонку видит ErrBookingNotActive. Переход,
// начисление суммы по тарифу и возврат места выполняются одной
// транзакцией в репозитории.
func (s *bookingService) finalize(ctx context.Context, bookingID, requestedBy int64, target entity.BookingStatus, byAdmin bool) (*entity.Booking, error) {
	key := lock.BookingKey(bookingID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !byAdmin && booking.UserID != requestedBy {
		return nil, entity.ErrNotBookingOwner
	}

	amount := settlementAmount(target, byAdmin)

	ok, err := s.bookingRepo.FinalizeAndSettle(ctx, bookingID, target, amount)
	if err != nil {
		return nil, fmt.Errorf("ошибка при переводе бронирования: %w", err)
	}
	if !ok {
		return nil, entity.ErrBookingNotActive
	}

	logrus.Infof("Booking %d finalized: %s, settlement=%.2f", bookingID, target, amount)

	return s.bookingRepo.GetByID(ctx, bookingID)
}

func (s *bookingService) GetAllBookings(ctx context.Context) ([]*entity.Booking, error) {
	return s.bookingRepo.GetAll(ctx)
}

// ExpireBooking помечает просроченное бронирование как expired со
// штрафом. Бронирование, чей срок еще не вышел, не трогается: задача из
// очереди, пришедшая раньше времени, завершается без эффекта, а метла
// подхватит бронирование позже. Повторный вызов для уже истекшего
// бронирования — no-op, без двойного штрафа.
func (s *bookingService) ExpireBooking(ctx context.Context, bookingID int64) error {
	key := lock.BookingKey(bookingID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if booking.Status == entity.BookingStatusActive && !s.isOverdue(booking) {
		return nil
	}

	ok, err := s.bookingRepo.FinalizeAndSettle(ctx, bookingID, entity.BookingStatusExpired, ExpiryFine)
	if err != nil {
		return fmt.Errorf("ошибка при истечении бронирования: %w", err)
	}
	if !ok {
		// Уже финализировано другим путем
		return nil
	}

	logrus.Infof("Booking %d expired, fine=%.2f", bookingID, ExpiryFine)
	return nil
}

// ExpireOverdueBookings находит все просроченные активные бронирования
// и истекает каждое. Возвращает число истекших.
func (s *bookingService) ExpireOverdueBookings(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.expiryThreshold)

	overdue, err := s.bookingRepo.GetOverdueActive(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("ошибка при получении просроченных бронирований: %w", err)
	}

	expired := 0
	for _, booking := range overdue {
		select {
		case <-ctx.Done():
			return expired, ctx.Err()
		default:
		}

		if err := s.ExpireBooking(ctx, booking.ID); err != nil {
			logrus.Errorf("Failed to expire booking %d: %v", booking.ID, err)
			continue
		}
		expired++
	}

	return expired, nil
}

// GetDashboardStats возвращает сводку для административной панели
func (s *bookingService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователей: %w", err)
	}
	for _, u := range users {
		if !u.IsAdmin {
			stats.TotalUsers++
		}
	}

	locations, err := s.locationRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении парковок: %w", err)
	}
	stats.TotalLocations = int64(len(locations))

	if stats.TotalBookings, err = s.bookingRepo.CountAll(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при подсчете бронирований: %w", err)
	}
	if stats.ActiveBookings, err = s.bookingRepo.CountByStatus(ctx, entity.BookingStatusActive); err != nil {
		return nil, fmt.Errorf("ошибка при подсчете активных бронирований: %w", err)
	}

	if stats.RecentBookings, err = s.bookingRepo.GetRecent(ctx, 10); err != nil {
		return nil, fmt.Errorf("ошибка при получении последних бронирований: %w", err)
	}

	return stats, nil
}
