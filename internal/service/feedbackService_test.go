package service

import (
	"context"
	"sync"
	"testing"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("feedback on completed booking earns points", func(t *testing.T) {
		env := newTestEnv()
		user := env.addUser(t, "rahim")
		location := env.addLocation(t, 1)

		booking := completeBooking(t, env, user.ID, location.ID)

		result, err := env.feedback.SubmitFeedback(ctx, user.ID, &SubmitFeedbackRequest{
			BookingID: booking.ID,
			Rating:    5,
			Comment:   "plenty of space near the entrance",
		})
		require.NoError(t, err)
		assert.Equal(t, FeedbackRewardPoints, result.PointsEarned)
		require.NotNil(t, result.Booking.Rating)
		assert.Equal(t, 5, *result.Booking.Rating)

		stored, err := env.userRepo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, FeedbackRewardPoints, stored.Points)
	})

	t.Run("second feedback is rejected", func(t *testing.T) {
		env := newTestEnv()
		user := env.addUser(t, "rahim")
		location := env.addLocation(t, 1)

		booking := completeBooking(t, env, user.ID, location.ID)

		_, err := env.feedback.SubmitFeedback(ctx, user.ID, &SubmitFeedbackRequest{BookingID: booking.ID, Rating: 4})
		require.NoError(t, err)

		_, err = env.feedback.SubmitFeedback(ctx, user.ID, &SubmitFeedbackRequest{BookingID: booking.ID, Rating: 1})
		assert.ErrorIs(t, err, entity.ErrAlreadyRated)

		// Баллы начислены ровно один раз
		stored, err := env.userRepo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, FeedbackRewardPoints, stored.Points)
	})

	t.Run("active booking cannot be rated", func(t *testing.T) {
		env := newTestEnv()
		user := env.addUser(t, "rahim")
		location := env.addLocation(t, 1)

		booking, err := env.bookings.CreateBooking(ctx, user.ID, location.ID)
		require.NoError(t, err)

		_, err = env.feedback.SubmitFeedback(ctx, user.ID, &SubmitFeedbackRequest{BookingID: booking.ID, Rating: 3})
		assert.ErrorIs(t, err, entity.ErrBookingNotCompleted)
	})

	t.Run("cancelled booking cannot be rated", func(t *testing.T) {
		env := newTestEnv()
		user := env.addUser(t, "rahim")
		location := env.addLocation(t, 1)

		booking, err := env.bookings.CreateBooking(ctx, user.ID, location.ID)
		require.NoError(t, err)
		_, err = env.bookings.CancelBooking(ctx, booking.ID, user.ID)
		require.NoError(t, err)

		_, err = env.feedback.SubmitFeedback(ctx, user.ID, &SubmitFeedbackRequest{BookingID: booking.ID, Rating: 3})
		assert.ErrorIs(t, err, entity.ErrBookingNotCompleted)
	})

	t.Run("foreign booking is forbidden", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser(t, "owner")
		intruder := env.addUser(t, "intruder")
		location := env.addLocation(t, 1)

		booking := completeBooking(t, env, owner.ID, location.ID)

		_, err := env.feedback.SubmitFeedback(ctx, intruder.ID, &SubmitFeedbackRequest{BookingID: booking.ID, Rating: 5})
		assert.ErrorIs(t, err, entity.ErrNotBookingOwner)
	})

	t.Run("rating bounds", func(t *testing.T) {
		env := newTestEnv()
		user := env.addUser(t, "rahim")
		location := env.addLocation(t, 1)

		booking := completeBooking(t, env, user.ID, location.ID)

		for _, rating := range []int{0, 6, -1} {
			_, err := env.feedback.SubmitFeedback(ctx, user.ID, &SubmitFeedbackRequest{BookingID: booking.ID, Rating: rating})
			assert.ErrorIs(t, err, entity.ErrInvalidRating)
		}
	})
}

// TestConcurrentFeedback проверяет, что параллельные отзывы на одно
// бронирование дают ровно одно начисление баллов
func TestConcurrentFeedback(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	user := env.addUser(t, "rahim")
	location := env.addLocation(t, 1)

	booking := completeBooking(t, env, user.ID, location.ID)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			env.feedback.SubmitFeedback(ctx, user.ID, &SubmitFeedbackRequest{BookingID: booking.ID, Rating: rating})
		}(i%5 + 1)
	}
	wg.Wait()

	stored, err := env.userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, FeedbackRewardPoints, stored.Points)
}

func TestGetFeedback(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	user := env.addUser(t, "rahim")
	location := env.addLocation(t, 1)

	booking := completeBooking(t, env, user.ID, location.ID)

	info, err := env.feedback.GetFeedback(ctx, booking.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, info.HasFeedback)

	_, err = env.feedback.SubmitFeedback(ctx, user.ID, &SubmitFeedbackRequest{
		BookingID: booking.ID,
		Rating:    4,
		Comment:   "narrow ramp",
	})
	require.NoError(t, err)

	info, err = env.feedback.GetFeedback(ctx, booking.ID, user.ID)
	require.NoError(t, err)
	require.True(t, info.HasFeedback)
	assert.Equal(t, 4, *info.Rating)
	assert.Equal(t, "narrow ramp", info.Comment)
}

func TestGetFeedbackStats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	location := env.addLocation(t, 1)

	ratings := []int{5, 4, 5}
	for i, rating := range ratings {
		user := env.addUser(t, "user"+string(rune('a'+i)))
		booking := completeBooking(t, env, user.ID, location.ID)
		_, err := env.feedback.SubmitFeedback(ctx, user.ID, &SubmitFeedbackRequest{BookingID: booking.ID, Rating: rating})
		require.NoError(t, err)
	}

	stats, err := env.feedback.GetFeedbackStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalFeedback)
	assert.InDelta(t, 14.0/3.0, stats.AverageRating, 0.01)
	assert.Equal(t, int64(2), stats.Distribution[5])
	assert.Equal(t, int64(1), stats.Distribution[4])
}
