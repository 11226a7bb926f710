package storage

import (
	"context"
	"errors"

	"github.com/rideway/rideway-backend/internal/models"
	"gorm.io/gorm"
)

// GormStore implements Store on top of a gorm-managed Postgres database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateRide(ctx context.Context, ride *models.Ride) error {
	return s.db.WithContext(ctx).Create(ride).Error
}

func (s *GormStore) FindRideByID(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	err := s.db.WithContext(ctx).Preload("User").Preload("Captain").First(&ride, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrRideNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

// TransitionRide relies on a conditional UPDATE so the database arbitrates
// races: only one of two concurrent confirms sees RowsAffected == 1.
func (s *GormStore) TransitionRide(ctx context.Context, id uint, from, to string, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	res := s.db.WithContext(ctx).
		Model(&models.Ride{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) FindCaptainByID(ctx context.Context, id uint) (*models.Captain, error) {
	var captain models.Captain
	err := s.db.WithContext(ctx).First(&captain, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrCaptainNotFound
	}
	if err != nil {
		return nil, err
	}
	return &captain, nil
}

func (s *GormStore) CaptainsByIDs(ctx context.Context, ids []uint) ([]models.Captain, error) {
	if len(ids) == 0 {
		return []models.Captain{}, nil
	}
	var captains []models.Captain
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&captains).Error; err != nil {
		return nil, err
	}
	return captains, nil
}

func (s *GormStore) MatchableCaptains(ctx context.Context) ([]models.Captain, error) {
	var captains []models.Captain
	err := s.db.WithContext(ctx).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL AND conn_id <> ''").
		Find(&captains).Error
	if err != nil {
		return nil, err
	}
	return captains, nil
}

func (s *GormStore) UpdateCaptainFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.Captain{}).Where("id = ?", id).Updates(fields).Error
}

func (s *GormStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) UpdateUserFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}
