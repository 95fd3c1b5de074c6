package service

import (
	"context"
	"fmt"

	repository "github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/database/postgres"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/pkg/lock"

	"github.com/sirupsen/logrus"
)

type feedbackService struct {
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	locks       *lock.KeyedMutex
}

// NewFeedbackService создает новый экземпляр FeedbackService
func NewFeedbackService(
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	locks *lock.KeyedMutex,
) FeedbackService {
	return &feedbackService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		locks:       locks,
	}
}

// SubmitFeedback принимает единственный отзыв на завершенное
// бронирование и начисляет баллы ровно один раз. Условное обновление
// rating IS NULL гарантирует это при параллельных запросах.
func (s *feedbackService) SubmitFeedback(ctx context.Context, userID int64, req *SubmitFeedbackRequest) (*FeedbackResult, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, entity.ErrInvalidRating
	}

	key := lock.BookingKey(req.BookingID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != userID {
		return nil, entity.ErrNotBookingOwner
	}
	if booking.Status != entity.BookingStatusCompleted {
		return nil, entity.ErrBookingNotCompleted
	}

	ok, err := s.bookingRepo.SetFeedbackIfUnrated(ctx, req.BookingID, req.Rating, req.Comment)
	if err != nil {
		return nil, fmt.Errorf("ошибка при сохранении отзыва: %w", err)
	}
	if !ok {
		return nil, entity.ErrAlreadyRated
	}

	if err := s.userRepo.AddPoints(ctx, userID, FeedbackRewardPoints); err != nil {
		return nil, fmt.Errorf("ошибка при начислении баллов: %w", err)
	}

	logrus.Infof("Feedback submitted: booking=%d, rating=%d, +%d points", req.BookingID, req.Rating, FeedbackRewardPoints)

	booking, err = s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	return &FeedbackResult{
		PointsEarned: FeedbackRewardPoints,
		Booking:      booking,
	}, nil
}

// GetFeedback возвращает отзыв владельца по бронированию
func (s *feedbackService) GetFeedback(ctx context.Context, bookingID, userID int64) (*FeedbackInfo, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, entity.ErrNotBookingOwner
	}

	info := &FeedbackInfo{}
	if booking.Rating != nil {
		info.HasFeedback = true
		info.Rating = booking.Rating
		info.Comment = booking.Comment
	}
	return info, nil
}

// GetAllFeedback возвращает все бронирования с отзывами
func (s *feedbackService) GetAllFeedback(ctx context.Context) ([]*entity.Booking, error) {
	return s.bookingRepo.GetRated(ctx)
}

// GetFeedbackStats возвращает сводку по всем отзывам
func (s *feedbackService) GetFeedbackStats(ctx context.Context) (*repository.RatingStats, error) {
	return s.bookingRepo.GetRatingStats(ctx)
}
