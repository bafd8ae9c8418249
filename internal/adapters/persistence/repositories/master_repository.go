package repositories

import (
	"context"

	"assetdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ManufacturerRepository handles manufacturer data access
type ManufacturerRepository struct {
	db *gorm.DB
}

// NewManufacturerRepository creates a new manufacturer repository
func NewManufacturerRepository(db *gorm.DB) *ManufacturerRepository {
	return &ManufacturerRepository{db: db}
}

// Create creates a manufacturer
func (r *ManufacturerRepository) Create(ctx context.Context, m *models.Manufacturer) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// GetByID gets a manufacturer by ID
func (r *ManufacturerRepository) GetByID(ctx context.Context, id uint) (*models.Manufacturer, error) {
	var m models.Manufacturer
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// List lists all manufacturers
func (r *ManufacturerRepository) List(ctx context.Context) ([]*models.Manufacturer, error) {
	var ms []*models.Manufacturer
	err := r.db.WithContext(ctx).Order("name ASC").Find(&ms).Error
	return ms, err
}

// Update updates a manufacturer
func (r *ManufacturerRepository) Update(ctx context.Context, m *models.Manufacturer) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// Delete soft deletes a manufacturer
func (r *ManufacturerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Manufacturer{}, id).Error
}

// LocationRepository handles location data access
type LocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Create creates a location
func (r *LocationRepository) Create(ctx context.Context, l *models.Location) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// GetByID gets a location by ID
func (r *LocationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var l models.Location
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// List lists all locations
func (r *LocationRepository) List(ctx context.Context) ([]*models.Location, error) {
	var ls []*models.Location
	err := r.db.WithContext(ctx).Order("name ASC").Find(&ls).Error
	return ls, err
}

// Update updates a location
func (r *LocationRepository) Update(ctx context.Context, l *models.Location) error {
	return r.db.WithContext(ctx).Save(l).Error
}

// Delete soft deletes a location
func (r *LocationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Location{}, id).Error
}
