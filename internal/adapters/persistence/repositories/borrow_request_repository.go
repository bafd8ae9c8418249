package repositories

import (
	"context"
	"errors"
	"time"

	"assetdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormBorrowRequestRepository handles borrow request data access
type GormBorrowRequestRepository struct {
	db *gorm.DB
}

// NewBorrowRequestRepository creates a new borrow request repository
func NewBorrowRequestRepository(db *gorm.DB) *GormBorrowRequestRepository {
	return &GormBorrowRequestRepository{db: db}
}

// Create creates a new borrow request
func (r *GormBorrowRequestRepository) Create(ctx context.Context, request *models.BorrowRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID gets a borrow request by ID with relations
func (r *GormBorrowRequestRepository) GetByID(ctx context.Context, id uint) (*models.BorrowRequest, error) {
	var request models.BorrowRequest
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("RequestedBy").
		Preload("ApprovedBy").
		First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Update updates a borrow request
func (r *GormBorrowRequestRepository) Update(ctx context.Context, request *models.BorrowRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// Delete removes a borrow request
func (r *GormBorrowRequestRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.BorrowRequest{}, id).Error
}

// DeletePending removes a request with a conditional DELETE on pending status
func (r *GormBorrowRequestRepository) DeletePending(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.RequestStatusPending).
		Delete(&models.BorrowRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRequestConflict
	}
	return nil
}

// MarkReturnRejected updates the return sub-status with a conditional UPDATE
// on the return still being open
func (r *GormBorrowRequestRepository) MarkReturnRejected(ctx context.Context, id uint, remarks string) error {
	res := r.db.WithContext(ctx).
		Model(&models.BorrowRequest{}).
		Where("id = ? AND status = ? AND return_requested = ? AND return_approved = ?",
			id, models.RequestStatusApproved, true, false).
		Updates(map[string]interface{}{
			"return_status":  models.ReturnStatusRejected,
			"return_remarks": remarks,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRequestConflict
	}
	return nil
}

// FindActiveByItemAndUser finds the caller's open request for an item
func (r *GormBorrowRequestRepository) FindActiveByItemAndUser(ctx context.Context, itemID, userID uint) (*models.BorrowRequest, error) {
	var request models.BorrowRequest
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND requested_by_id = ?", itemID, userID).
		Where("status IN ?", []string{models.RequestStatusPending, models.RequestStatusApproved}).
		Where("return_approved = ?", false).
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindActiveByItem finds the approved, unreturned request holding an item
func (r *GormBorrowRequestRepository) FindActiveByItem(ctx context.Context, itemID uint) (*models.BorrowRequest, error) {
	var request models.BorrowRequest
	err := r.db.WithContext(ctx).
		Preload("RequestedBy").
		Where("item_id = ? AND status = ? AND return_approved = ?",
			itemID, models.RequestStatusApproved, false).
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByUser lists a user's requests, newest first
func (r *GormBorrowRequestRepository) ListByUser(ctx context.Context, userID uint) ([]*models.BorrowRequest, error) {
	var requests []*models.BorrowRequest
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("requested_by_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListAll lists every request, newest first
func (r *GormBorrowRequestRepository) ListAll(ctx context.Context) ([]*models.BorrowRequest, error) {
	var requests []*models.BorrowRequest
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("RequestedBy").
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListOverdue lists approved, unreturned requests borrowed before the cutoff
func (r *GormBorrowRequestRepository) ListOverdue(ctx context.Context, cutoff time.Time) ([]*models.BorrowRequest, error) {
	var requests []*models.BorrowRequest
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("RequestedBy").
		Where("status = ? AND return_approved = ? AND borrow_date < ?",
			models.RequestStatusApproved, false, cutoff).
		Order("borrow_date ASC").
		Find(&requests).Error
	return requests, err
}

// GormBorrowTxRunner binds item and request repositories to one transaction
type GormBorrowTxRunner struct {
	db *gorm.DB
}

// NewBorrowTxRunner creates a new transaction runner
func NewBorrowTxRunner(db *gorm.DB) *GormBorrowTxRunner {
	return &GormBorrowTxRunner{db: db}
}

// InTx runs fn inside a single database transaction. Both repositories see
// the same transaction, so request and item writes land together or not at
// all.
func (t *GormBorrowTxRunner) InTx(ctx context.Context, fn func(items ItemRepository, requests BorrowRequestRepository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewItemRepository(tx), NewBorrowRequestRepository(tx))
	})
}
