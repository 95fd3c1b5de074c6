package service

import (
	"context"
	"fmt"

	repository "github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/database/postgres"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/pkg/lock"
)

type inventoryService struct {
	locationRepo repository.LocationRepository
	bookingRepo  repository.BookingRepository
	locks        *lock.KeyedMutex
}

// NewInventoryService создает новый экземпляр InventoryService
func NewInventoryService(
	locationRepo repository.LocationRepository,
	bookingRepo repository.BookingRepository,
	locks *lock.KeyedMutex,
) InventoryService {
	return &inventoryService{
		locationRepo: locationRepo,
		bookingRepo:  bookingRepo,
		locks:        locks,
	}
}

// CreateLocation создает новую парковку, все места свободны
func (s *inventoryService) CreateLocation(ctx context.Context, req *CreateLocationRequest) (*entity.Location, error) {
	location := &entity.Location{
		MallName:  req.MallName,
		Address:   req.Address,
		TotalSpot: req.TotalSpot,
	}

	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("ошибка при создании парковки: %w", err)
	}

	return location, nil
}

func (s *inventoryService) GetLocation(ctx context.Context, id int64) (*entity.Location, error) {
	return s.locationRepo.GetByID(ctx, id)
}

func (s *inventoryService) GetAllLocations(ctx context.Context) ([]*entity.Location, error) {
	return s.locationRepo.GetAll(ctx)
}

// UpdateLocation обновляет название и адрес; при изменении вместимости
// занятые места сохраняются: free = max(0, newTotal - used)
func (s *inventoryService) UpdateLocation(ctx context.Context, id int64, req *UpdateLocationRequest) (*entity.Location, error) {
	key := lock.LocationKey(id)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.MallName != "" {
		location.MallName = req.MallName
	}
	if req.Address != "" {
		location.Address = req.Address
	}

	if err := s.locationRepo.Update(ctx, location); err != nil {
		return nil, fmt.Errorf("ошибка при обновлении парковки: %w", err)
	}

	if req.TotalSpot > 0 && req.TotalSpot != location.TotalSpot {
		location, err = s.locationRepo.Resize(ctx, id, req.TotalSpot)
		if err != nil {
			return nil, fmt.Errorf("ошибка при изменении вместимости: %w", err)
		}
	}

	return location, nil
}

// DeleteLocation удаляет парковку, если на ней нет активных бронирований
func (s *inventoryService) DeleteLocation(ctx context.Context, id int64) error {
	key := lock.LocationKey(id)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	active, err := s.bookingRepo.CountActiveByLocation(ctx, id)
	if err != nil {
		return fmt.Errorf("ошибка при проверке активных бронирований: %w", err)
	}
	if active > 0 {
		return entity.ErrLocationInUse
	}

	return s.locationRepo.Delete(ctx, id)
}

// Reserve атомарно занимает одно свободное место
func (s *inventoryService) Reserve(ctx context.Context, locationID int64) error {
	key := lock.LocationKey(locationID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	return s.locationRepo.Reserve(ctx, locationID)
}

// Release атомарно возвращает одно место, не превышая вместимость
func (s *inventoryService) Release(ctx context.Context, locationID int64) error {
	key := lock.LocationKey(locationID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	return s.locationRepo.Release(ctx, locationID)
}
