package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"assetdesk/internal/adapters/persistence/models"
	"assetdesk/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Item catalog errors
var (
	ErrItemFieldsMissing = errors.New("item name, serial number and model are required")
	ErrItemHasActiveLoan = errors.New("item has an active borrow request")
)

// ItemService handles the item catalog. It never writes item status; that
// field belongs to the borrow lifecycle engine.
type ItemService struct {
	items    repositories.ItemRepository
	requests repositories.BorrowRequestRepository
}

// NewItemService creates a new item service
func NewItemService(items repositories.ItemRepository, requests repositories.BorrowRequestRepository) *ItemService {
	return &ItemService{
		items:    items,
		requests: requests,
	}
}

// CreateItemInput represents item creation input
type CreateItemInput struct {
	ItemName       string     `json:"item_name" validate:"required"`
	Description    string     `json:"description,omitempty"`
	SerialNo       string     `json:"serial_no" validate:"required"`
	ManufacturerID *uint      `json:"manufacturer_id,omitempty"`
	Model          string     `json:"model" validate:"required"`
	DateOfPurchase *time.Time `json:"date_of_purchase,omitempty"`
	Quantity       int        `json:"quantity,omitempty"`
	Condition      string     `json:"condition,omitempty"`
	LocationIDs    []uint     `json:"location_ids,omitempty"`
}

// Create creates a new catalog item
func (s *ItemService) Create(ctx context.Context, input *CreateItemInput, creatorID uint) (*models.Item, error) {
	if strings.TrimSpace(input.ItemName) == "" ||
		strings.TrimSpace(input.SerialNo) == "" ||
		strings.TrimSpace(input.Model) == "" {
		return nil, ErrItemFieldsMissing
	}

	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}
	condition := input.Condition
	if condition == "" {
		condition = models.ConditionGood
	}

	item := &models.Item{
		ItemName:       strings.TrimSpace(input.ItemName),
		Description:    input.Description,
		SerialNo:       strings.TrimSpace(input.SerialNo),
		ManufacturerID: input.ManufacturerID,
		Model:          strings.TrimSpace(input.Model),
		DateOfPurchase: input.DateOfPurchase,
		Quantity:       quantity,
		Condition:      condition,
		Status:         models.ItemStatusAvailable,
		CreatedByID:    creatorID,
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	if len(input.LocationIDs) > 0 {
		if err := s.items.ReplaceLocations(ctx, item, input.LocationIDs); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Item created: %s (serial: %s)", item.ItemName, item.SerialNo)
	return s.items.GetByID(ctx, item.ID)
}

// GetByID gets an item by ID with relations
func (s *ItemService) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// List lists all items with manufacturer and location expansion
func (s *ItemService) List(ctx context.Context) ([]*models.Item, error) {
	return s.items.List(ctx)
}

// UpdateItemInput represents item update input. Status is deliberately
// absent; only the lifecycle engine moves it.
type UpdateItemInput struct {
	ItemName       string     `json:"item_name,omitempty"`
	Description    string     `json:"description,omitempty"`
	SerialNo       string     `json:"serial_no,omitempty"`
	ManufacturerID *uint      `json:"manufacturer_id,omitempty"`
	Model          string     `json:"model,omitempty"`
	DateOfPurchase *time.Time `json:"date_of_purchase,omitempty"`
	Quantity       *int       `json:"quantity,omitempty"`
	Condition      string     `json:"condition,omitempty"`
	LocationIDs    []uint     `json:"location_ids,omitempty"`
}

// Update updates catalog fields of an item
func (s *ItemService) Update(ctx context.Context, id uint, input *UpdateItemInput) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if input.ItemName != "" {
		item.ItemName = strings.TrimSpace(input.ItemName)
	}
	if input.Description != "" {
		item.Description = input.Description
	}
	if input.SerialNo != "" {
		item.SerialNo = strings.TrimSpace(input.SerialNo)
	}
	if input.ManufacturerID != nil {
		item.ManufacturerID = input.ManufacturerID
	}
	if input.Model != "" {
		item.Model = strings.TrimSpace(input.Model)
	}
	if input.DateOfPurchase != nil {
		item.DateOfPurchase = input.DateOfPurchase
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.Condition != "" {
		item.Condition = input.Condition
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}

	if input.LocationIDs != nil {
		if err := s.items.ReplaceLocations(ctx, item, input.LocationIDs); err != nil {
			return nil, err
		}
	}

	return s.items.GetByID(ctx, item.ID)
}

// Delete removes an item. Items with an active approved request cannot be
// deleted; the lifecycle invariant would be left dangling.
func (s *ItemService) Delete(ctx context.Context, id uint) error {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}

	active, err := s.requests.FindActiveByItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if active != nil {
		return ErrItemHasActiveLoan
	}

	if err := s.items.Delete(ctx, item.ID); err != nil {
		return err
	}

	log.Printf("🗑️ Item %d deleted (%s)", item.ID, item.ItemName)
	return nil
}
