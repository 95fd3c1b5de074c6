package service

import (
	"context"
	"time"

	repository "github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/database/postgres"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"
)

// InventoryService владеет счетчиком свободных мест каждой локации
type InventoryService interface {
	CreateLocation(ctx context.Context, req *CreateLocationRequest) (*entity.Location, error)
	GetLocation(ctx context.Context, id int64) (*entity.Location, error)
	GetAllLocations(ctx context.Context) ([]*entity.Location, error)
	UpdateLocation(ctx context.Context, id int64, req *UpdateLocationRequest) (*entity.Location, error)
	DeleteLocation(ctx context.Context, id int64) error

	// Атомарные операции над счетчиком мест
	Reserve(ctx context.Context, locationID int64) error
	Release(ctx context.Context, locationID int64) error
}

// BookingService определяет операции жизненного цикла бронирования
type BookingService interface {
	// Основные операции
	CreateBooking(ctx context.Context, userID, locationID int64) (*entity.Booking, error)
	GetBooking(ctx context.Context, id int64) (*entity.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*entity.Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID int64) (*entity.Booking, error)
	CompleteBooking(ctx context.Context, bookingID, userID int64) (*entity.Booking, error)

	// Административные операции
	AdminCancelBooking(ctx context.Context, bookingID int64) (*entity.Booking, error)
	GetAllBookings(ctx context.Context) ([]*entity.Booking, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)

	// Операции истечения срока
	ExpireBooking(ctx context.Context, bookingID int64) error
	ExpireOverdueBookings(ctx context.Context) (int, error)
}

// SettlementService начисляет штрафы и сборы и проводит оплату
type SettlementService interface {
	ProcessPayment(ctx context.Context, userID int64, method entity.PaymentMethod) (*PaymentResult, error)
	GetPaymentSummary(ctx context.Context, userID int64) (*PaymentSummary, error)
	GetPaymentHistory(ctx context.Context, userID int64) ([]*entity.Payment, error)
}

// FeedbackService принимает единственный отзыв на завершенное бронирование
type FeedbackService interface {
	SubmitFeedback(ctx context.Context, userID int64, req *SubmitFeedbackRequest) (*FeedbackResult, error)
	GetFeedback(ctx context.Context, bookingID, userID int64) (*FeedbackInfo, error)
	GetAllFeedback(ctx context.Context) ([]*entity.Booking, error)
	GetFeedbackStats(ctx context.Context) (*repository.RatingStats, error)
}

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*entity.User, error)
	GetUser(ctx context.Context, id int64) (*entity.User, error)
}

// TaskPublisher интерфейс для публикации отложенных задач в очередь
type TaskPublisher interface {
	Publish(ctx context.Context, task *Task) error
}

// Task представляет задачу для очереди
type Task struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	ExecuteAt  time.Time              `json:"execute_at"`
	MaxRetries int                    `json:"max_retries"`
	Attempts   int                    `json:"attempts"`
}

// Константы типов задач
const (
	TaskTypeExpireBooking = "expire_booking"
	TaskTypeExpirySweep   = "expiry_sweep"
)

// CreateLocationRequest представляет данные новой парковки
type CreateLocationRequest struct {
	MallName  string `json:"mall_name" binding:"required,min=1,max=255"`
	Address   string `json:"address" binding:"required,min=1,max=500"`
	TotalSpot int    `json:"total_spot" binding:"required,min=1"`
}

// UpdateLocationRequest представляет изменения парковки; нулевой
// TotalSpot означает "не менять вместимость"
type UpdateLocationRequest struct {
	MallName  string `json:"mall_name"`
	Address   string `json:"address"`
	TotalSpot int    `json:"total_spot" binding:"omitempty,min=1"`
}

type CreateUserRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=255"`
	Email   string `json:"email" binding:"required,email"`
	IsAdmin bool   `json:"is_admin"`
}

type SubmitFeedbackRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=1000"`
}

// PaymentResult представляет итог проведенной оплаты
type PaymentResult struct {
	Method         entity.PaymentMethod `json:"method"`
	AmountPaid     float64              `json:"amount_paid"`
	PointsDeducted int                  `json:"points_deducted"`
	BookingsPaid   int                  `json:"bookings_paid"`
}

// PaymentSummary представляет текущее состояние баланса пользователя
type PaymentSummary struct {
	PendingBalance float64 `json:"pending_balance"`
	Points         int     `json:"points"`
	UnpaidBookings int     `json:"unpaid_bookings"`
}

type FeedbackResult struct {
	PointsEarned int             `json:"points_earned"`
	Booking      *entity.Booking `json:"booking"`
}

type FeedbackInfo struct {
	Rating      *int   `json:"rating,omitempty"`
	Comment     string `json:"comment,omitempty"`
	HasFeedback bool   `json:"has_feedback"`
}

// DashboardStats представляет сводку для административной панели
type DashboardStats struct {
	TotalUsers     int64             `json:"total_users"`
	TotalLocations int64             `json:"total_locations"`
	TotalBookings  int64             `json:"total_bookings"`
	ActiveBookings int64             `json:"active_bookings"`
	RecentBookings []*entity.Booking `json:"recent_bookings"`
}
