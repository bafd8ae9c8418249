package repositories

import (
	"context"

	"assetdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormItemRepository handles item data access
type GormItemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// Create creates a new item
func (r *GormItemRepository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID gets an item by ID with relations
func (r *GormItemRepository) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		Preload("Manufacturer").
		Preload("Locations").
		Preload("CreatedBy").
		First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List lists all items with manufacturer and location expansion
func (r *GormItemRepository) List(ctx context.Context) ([]*models.Item, error) {
	var items []*models.Item
	err := r.db.WithContext(ctx).
		Preload("Manufacturer").
		Preload("Locations").
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// Update updates an item
func (r *GormItemRepository) Update(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete deletes an item
func (r *GormItemRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Item{}, id).Error
}

// ReplaceLocations replaces the item's location set
func (r *GormItemRepository) ReplaceLocations(ctx context.Context, item *models.Item, locationIDs []uint) error {
	locations := make([]models.Location, len(locationIDs))
	for i, id := range locationIDs {
		locations[i] = models.Location{ID: id}
	}
	return r.db.WithContext(ctx).Model(item).Association("Locations").Replace(locations)
}

// SetStatus flips item status with a conditional UPDATE. A zero-row match
// means another transaction already moved the item out of the expected
// status; the caller gets ErrStatusConflict and must abort.
func (r *GormItemRepository) SetStatus(ctx context.Context, id uint, from, to string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}
