package service

import (
	"context"
	"sort"
	"sync"
	"time"

	repository "github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/database/postgres"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"
)

// In-memory репозитории для тестов сервисного слоя. Повторяют
// семантику SQL-реализаций: условные обновления, атомарные счетчики,
// один активный брони на пользователя.

type memLocationRepo struct {
	mu        sync.Mutex
	locations map[int64]*entity.Location
	nextID    int64
}

func newMemLocationRepo() *memLocationRepo {
	return &memLocationRepo{locations: make(map[int64]*entity.Location), nextID: 1}
}

func (r *memLocationRepo) Create(_ context.Context, location *entity.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if location.TotalSpot <= 0 {
		return entity.ErrInvalidTotalSpot
	}
	location.ID = r.nextID
	r.nextID++
	location.FreeSpot = location.TotalSpot
	location.CreatedAt = time.Now()
	location.UpdatedAt = location.CreatedAt

	copied := *location
	r.locations[location.ID] = &copied
	return nil
}

func (r *memLocationRepo) GetByID(_ context.Context, id int64) (*entity.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	location, ok := r.locations[id]
	if !ok {
		return nil, entity.ErrLocationNotFound
	}
	copied := *location
	return &copied, nil
}

func (r *memLocationRepo) GetAll(_ context.Context) ([]*entity.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Location, 0, len(r.locations))
	for _, location := range r.locations {
		copied := *location
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memLocationRepo) Update(_ context.Context, location *entity.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.locations[location.ID]
	if !ok {
		return entity.ErrLocationNotFound
	}
	stored.MallName = location.MallName
	stored.Address = location.Address
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *memLocationRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.locations[id]; !ok {
		return entity.ErrLocationNotFound
	}
	delete(r.locations, id)
	return nil
}

func (r *memLocationRepo) Reserve(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	location, ok := r.locations[id]
	if !ok {
		return entity.ErrLocationNotFound
	}
	if location.FreeSpot <= 0 {
		return entity.ErrNoFreeSpots
	}
	location.FreeSpot--
	location.UpdatedAt = time.Now()
	return nil
}

func (r *memLocationRepo) Release(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	location, ok := r.locations[id]
	if !ok {
		return entity.ErrLocationNotFound
	}
	if location.FreeSpot < location.TotalSpot {
		location.FreeSpot++
	}
	location.UpdatedAt = time.Now()
	return nil
}

func (r *memLocationRepo) Resize(_ context.Context, id int64, newTotal int) (*entity.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if newTotal <= 0 {
		return nil, entity.ErrInvalidTotalSpot
	}
	location, ok := r.locations[id]
	if !ok {
		return nil, entity.ErrLocationNotFound
	}
	used := location.TotalSpot - location.FreeSpot
	location.TotalSpot = newTotal
	location.FreeSpot = newTotal - used
	if location.FreeSpot < 0 {
		location.FreeSpot = 0
	}
	location.UpdatedAt = time.Now()
	copied := *location
	return &copied, nil
}

type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[int64]*entity.Booking
	nextID   int64

	// Транзакционные эффекты финализации применяются к связанным
	// репозиториям; finalizeErr имитирует откат всей транзакции
	users       *memUserRepo
	locations   *memLocationRepo
	finalizeErr error
}

func newMemBookingRepo(users *memUserRepo, locations *memLocationRepo) *memBookingRepo {
	return &memBookingRepo{
		bookings:  make(map[int64]*entity.Booking),
		nextID:    1,
		users:     users,
		locations: locations,
	}
}

func (r *memBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.UserID == booking.UserID && b.Status == entity.BookingStatusActive {
			return entity.ErrActiveBookingExists
		}
	}

	booking.ID = r.nextID
	r.nextID++
	booking.Status = entity.BookingStatusActive
	if booking.BookingTime.IsZero() {
		booking.BookingTime = time.Now()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id int64) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, entity.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (r *memBookingRepo) GetByUserID(_ context.Context, userID int64) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			copied := *b
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memBookingRepo) GetAll(_ context.Context) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		copied := *b
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memBookingRepo) GetActiveByUserID(_ context.Context, userID int64) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.UserID == userID && b.Status == entity.BookingStatusActive {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memBookingRepo) FinalizeAndSettle(_ context.Context, id int64, status entity.BookingStatus, settlementAmount float64) (bool, error) {
	r.mu.Lock()
	if r.finalizeErr != nil {
		err := r.finalizeErr
		r.mu.Unlock()
		return false, err
	}
	booking, ok := r.bookings[id]
	if !ok || booking.Status != entity.BookingStatusActive {
		r.mu.Unlock()
		return false, nil
	}
	booking.Status = status
	booking.SettlementAmount = settlementAmount
	booking.UpdatedAt = time.Now()
	userID, locationID := booking.UserID, booking.LocationID
	r.mu.Unlock()

	if settlementAmount > 0 {
		r.users.mu.Lock()
		if u, ok := r.users.users[userID]; ok {
			u.PendingBalance += settlementAmount
		}
		r.users.mu.Unlock()
	}

	r.locations.mu.Lock()
	if l, ok := r.locations.locations[locationID]; ok && l.FreeSpot < l.TotalSpot {
		l.FreeSpot++
		l.UpdatedAt = time.Now()
	}
	r.locations.mu.Unlock()

	return true, nil
}

func (r *memBookingRepo) GetOverdueActive(_ context.Context, before time.Time) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.Status == entity.BookingStatusActive && !b.BookingTime.After(before) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memBookingRepo) CountActiveByLocation(_ context.Context, locationID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, b := range r.bookings {
		if b.LocationID == locationID && b.Status == entity.BookingStatusActive {
			count++
		}
	}
	return count, nil
}

func (r *memBookingRepo) GetUnpaidFinalized(_ context.Context, userID int64) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.UserID == userID && b.Status.IsTerminal() && !b.Paid && b.SettlementAmount > 0 {
			copied := *b
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memBookingRepo) SetFeedbackIfUnrated(_ context.Context, id int64, rating int, comment string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok || booking.Rating != nil {
		return false, nil
	}
	booking.Rating = &rating
	booking.Comment = comment
	booking.UpdatedAt = time.Now()
	return true, nil
}

func (r *memBookingRepo) GetRated(_ context.Context) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.Rating != nil {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memBookingRepo) GetRatingStats(_ context.Context) (*repository.RatingStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &repository.RatingStats{Distribution: make(map[int]int64)}
	sum := 0
	for _, b := range r.bookings {
		if b.Rating != nil {
			stats.TotalFeedback++
			stats.Distribution[*b.Rating]++
			sum += *b.Rating
		}
	}
	if stats.TotalFeedback > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalFeedback)
	}
	return stats, nil
}

func (r *memBookingRepo) CountAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.bookings)), nil
}

func (r *memBookingRepo) CountByStatus(_ context.Context, status entity.BookingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, b := range r.bookings {
		if b.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *memBookingRepo) GetRecent(_ context.Context, limit int) ([]*entity.Booking, error) {
	all, _ := r.GetAll(context.Background())
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type memUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*entity.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]*entity.User), nextID: 1}
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return entity.ErrUserAlreadyExists
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()

	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetAll(_ context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUserRepo) AddPoints(_ context.Context, userID int64, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return entity.ErrUserNotFound
	}
	if user.Points+delta < 0 {
		return entity.ErrInsufficientPoints
	}
	user.Points += delta
	return nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments []*entity.Payment
	nextID   int64

	users    *memUserRepo
	bookings *memBookingRepo
	// settleErr имитирует сбой транзакции: ни одна из частей расчета
	// не должна примениться
	settleErr error
}

func newMemPaymentRepo(users *memUserRepo, bookings *memBookingRepo) *memPaymentRepo {
	return &memPaymentRepo{nextID: 1, users: users, bookings: bookings}
}

func (r *memPaymentRepo) Settle(_ context.Context, userID int64, bookings []*entity.Booking, method entity.PaymentMethod, pointsCost int) error {
	r.mu.Lock()
	if r.settleErr != nil {
		err := r.settleErr
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.users.mu.Lock()
	user, ok := r.users.users[userID]
	if !ok {
		r.users.mu.Unlock()
		return entity.ErrUserNotFound
	}
	if method == entity.PaymentMethodPoints {
		if user.Points < pointsCost {
			r.users.mu.Unlock()
			return entity.ErrInsufficientPoints
		}
		user.Points -= pointsCost
	}
	user.PendingBalance = 0
	r.users.mu.Unlock()

	r.bookings.mu.Lock()
	for _, b := range bookings {
		if stored, ok := r.bookings.bookings[b.ID]; ok {
			stored.Paid = true
			stored.PaymentMethod = method
			stored.UpdatedAt = time.Now()
		}
	}
	r.bookings.mu.Unlock()

	r.mu.Lock()
	paidAt := time.Now()
	for _, b := range bookings {
		r.payments = append(r.payments, &entity.Payment{
			ID:        r.nextID,
			UserID:    userID,
			BookingID: b.ID,
			Amount:    b.SettlementAmount,
			PaidAt:    paidAt,
		})
		r.nextID++
	}
	r.mu.Unlock()

	return nil
}

func (r *memPaymentRepo) GetByUserID(_ context.Context, userID int64) ([]*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}
