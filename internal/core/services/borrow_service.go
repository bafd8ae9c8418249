package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"assetdesk/internal/adapters/persistence/models"
	"assetdesk/internal/adapters/persistence/repositories"
	"assetdesk/internal/core/domain"

	"gorm.io/gorm"
)

// Borrow lifecycle errors
var (
	ErrItemNotFound           = errors.New("item not found")
	ErrRequestNotFound        = errors.New("borrow request not found")
	ErrItemBorrowed           = errors.New("item is currently borrowed")
	ErrDuplicateRequest       = errors.New("you already have an active borrow request for this item")
	ErrReasonRequired         = errors.New("reason is required")
	ErrInvalidRole            = errors.New("unauthorized user role")
	ErrInvalidAction          = errors.New("invalid action, use approve or reject")
	ErrAlreadyApproved        = errors.New("request already approved")
	ErrRequestClosed          = errors.New("request already finalized")
	ErrRequestNotApproved     = errors.New("borrow request is not approved")
	ErrReturnAlreadyRequested = errors.New("return already requested or approved")
	ErrNoReturnRequested      = errors.New("no return requested for this request")
	ErrRequestNotPending      = errors.New("only pending requests can be cancelled")
	ErrNotAuthorized          = errors.New("not authorized for this request")
)

// Decision actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// BorrowService enforces the borrow request lifecycle: request, approval,
// return request, return approval/rejection, cancellation. It is the only
// writer of request status fields and of item status, and it moves both in
// one transaction so no reader ever sees a borrowed item without its
// approved request or vice versa.
type BorrowService struct {
	items    repositories.ItemRepository
	requests repositories.BorrowRequestRepository
	tx       repositories.BorrowTxRunner
}

// NewBorrowService creates a new borrow service
func NewBorrowService(
	items repositories.ItemRepository,
	requests repositories.BorrowRequestRepository,
	tx repositories.BorrowTxRunner,
) *BorrowService {
	return &BorrowService{
		items:    items,
		requests: requests,
		tx:       tx,
	}
}

// CreateRequestInput represents borrow request creation input
type CreateRequestInput struct {
	ItemID uint   `json:"item_id" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// CreateRequest submits a borrow request for an available item. Department
// users get a pending request awaiting an admin decision; admins are
// auto-approved and the item flips to borrowed in the same transaction.
func (s *BorrowService) CreateRequest(ctx context.Context, input *CreateRequestInput, actor domain.Actor) (*models.BorrowRequest, error) {
	reason := strings.TrimSpace(input.Reason)
	if input.ItemID == 0 || reason == "" {
		return nil, ErrReasonRequired
	}
	if !actor.Role.Valid() {
		return nil, ErrInvalidRole
	}

	var created *models.BorrowRequest
	err := s.tx.InTx(ctx, func(items repositories.ItemRepository, requests repositories.BorrowRequestRepository) error {
		item, err := items.GetByID(ctx, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		if item.Status == models.ItemStatusBorrowed {
			return ErrItemBorrowed
		}

		existing, err := requests.FindActiveByItemAndUser(ctx, item.ID, actor.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateRequest
		}

		request := &models.BorrowRequest{
			ItemID:        item.ID,
			RequestedByID: actor.UserID,
			Reason:        reason,
			Status:        models.RequestStatusPending,
			ReturnStatus:  models.ReturnStatusNone,
		}

		if actor.Role.IsAdmin() {
			// Auto-approve: the item flip is the serialization point. A
			// concurrent winner leaves the conditional update with zero rows
			// and this whole transaction rolls back.
			if err := items.SetStatus(ctx, item.ID, models.ItemStatusAvailable, models.ItemStatusBorrowed); err != nil {
				if errors.Is(err, repositories.ErrStatusConflict) {
					return ErrItemBorrowed
				}
				return err
			}
			now := time.Now()
			request.Status = models.RequestStatusApproved
			request.ApprovedByID = &actor.UserID
			request.BorrowDate = &now
		}

		if err := requests.Create(ctx, request); err != nil {
			return err
		}
		created = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Borrow request %d created for item %d (status: %s)", created.ID, created.ItemID, created.Status)

	// Reload with relations for the response
	if full, err := s.requests.GetByID(ctx, created.ID); err == nil {
		return full, nil
	}
	return created, nil
}

// DecideRequestInput represents an admin approve/reject decision
type DecideRequestInput struct {
	Action       string `json:"action" validate:"required,oneof=approve reject"`
	AdminRemarks string `json:"admin_remarks,omitempty"`
}

// DecisionResult carries the updated request plus denormalized display fields
type DecisionResult struct {
	Request      *models.BorrowRequest `json:"request"`
	BorrowerName string                `json:"borrower_name,omitempty"`
	BorrowerMail string                `json:"borrower_email,omitempty"`
	ItemName     string                `json:"item_name,omitempty"`
}

// DecideRequest applies an admin approve or reject decision. Approval flips
// the item to borrowed; the first approver wins and a second one gets a
// conflict. Rejection never touches the item.
func (s *BorrowService) DecideRequest(ctx context.Context, requestID uint, input *DecideRequestInput, actor domain.Actor) (*DecisionResult, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	if input.Action != ActionApprove && input.Action != ActionReject {
		return nil, ErrInvalidAction
	}

	err := s.tx.InTx(ctx, func(items repositories.ItemRepository, requests repositories.BorrowRequestRepository) error {
		request, err := requests.GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		if request.IsClosed() {
			return ErrRequestClosed
		}

		if input.Action == ActionApprove {
			if request.Status == models.RequestStatusApproved {
				return ErrAlreadyApproved
			}
			if err := items.SetStatus(ctx, request.ItemID, models.ItemStatusAvailable, models.ItemStatusBorrowed); err != nil {
				if errors.Is(err, repositories.ErrStatusConflict) {
					return ErrItemBorrowed
				}
				return err
			}
			now := time.Now()
			request.Status = models.RequestStatusApproved
			request.ApprovedByID = &actor.UserID
			request.BorrowDate = &now
		} else {
			request.Status = models.RequestStatusRejected
			request.AdminRemarks = input.AdminRemarks
		}

		return requests.Update(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Borrow request %d %sd by admin %d", requestID, input.Action, actor.UserID)

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	result := &DecisionResult{Request: request}
	if request.RequestedBy != nil {
		result.BorrowerName = request.RequestedBy.Name
		result.BorrowerMail = request.RequestedBy.Email
	}
	if request.Item != nil {
		result.ItemName = request.Item.ItemName
	}
	return result, nil
}

// RequestReturn starts the return leg of an approved request. The borrower
// marks the return as requested and waits for admin confirmation; an admin
// caller short-circuits to a confirmed return with the item made available.
func (s *BorrowService) RequestReturn(ctx context.Context, requestID uint, actor domain.Actor) (*models.BorrowRequest, error) {
	err := s.tx.InTx(ctx, func(items repositories.ItemRepository, requests repositories.BorrowRequestRepository) error {
		request, err := requests.GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		if request.Status != models.RequestStatusApproved {
			return ErrRequestNotApproved
		}
		if !actor.Role.IsAdmin() && request.RequestedByID != actor.UserID {
			return ErrNotAuthorized
		}
		if request.ReturnRequested || request.ReturnApproved {
			return ErrReturnAlreadyRequested
		}

		if actor.Role.IsAdmin() {
			if err := items.SetStatus(ctx, request.ItemID, models.ItemStatusBorrowed, models.ItemStatusAvailable); err != nil {
				if errors.Is(err, repositories.ErrStatusConflict) {
					return ErrRequestClosed
				}
				return err
			}
			now := time.Now()
			request.ReturnRequested = true
			request.ReturnApproved = true
			request.ReturnStatus = models.ReturnStatusApproved
			request.ReturnedDate = &now
		} else {
			request.ReturnRequested = true
			request.ReturnStatus = models.ReturnStatusRequested
		}

		return requests.Update(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Return requested for borrow request %d by user %d", requestID, actor.UserID)
	return s.requests.GetByID(ctx, requestID)
}

// ConfirmReturn approves a requested return: the request is closed and the
// item made available again, in one transaction.
func (s *BorrowService) ConfirmReturn(ctx context.Context, requestID uint, actor domain.Actor) (*models.BorrowRequest, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	err := s.tx.InTx(ctx, func(items repositories.ItemRepository, requests repositories.BorrowRequestRepository) error {
		request, err := requests.GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		if request.Status != models.RequestStatusApproved || !request.ReturnRequested {
			return ErrNoReturnRequested
		}
		if request.ReturnApproved {
			return ErrRequestClosed
		}

		if err := items.SetStatus(ctx, request.ItemID, models.ItemStatusBorrowed, models.ItemStatusAvailable); err != nil {
			if errors.Is(err, repositories.ErrStatusConflict) {
				return ErrRequestClosed
			}
			return err
		}

		now := time.Now()
		request.ReturnApproved = true
		request.ReturnStatus = models.ReturnStatusApproved
		request.ReturnedDate = &now
		return requests.Update(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Return confirmed for borrow request %d by admin %d", requestID, actor.UserID)
	return s.requests.GetByID(ctx, requestID)
}

// RejectReturnInput represents return rejection input
type RejectReturnInput struct {
	ReturnRemarks string `json:"return_remarks,omitempty"`
}

// RejectReturn declines a requested return. The item stays borrowed and the
// request stays approved; only the return sub-status and remarks change.
func (s *BorrowService) RejectReturn(ctx context.Context, requestID uint, input *RejectReturnInput, actor domain.Actor) (*models.BorrowRequest, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	remarks := input.ReturnRemarks
	if remarks == "" {
		remarks = "Return rejected."
	}

	err := s.tx.InTx(ctx, func(items repositories.ItemRepository, requests repositories.BorrowRequestRepository) error {
		request, err := requests.GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		if request.Status != models.RequestStatusApproved || !request.ReturnRequested {
			return ErrNoReturnRequested
		}
		if request.ReturnApproved {
			return ErrRequestClosed
		}

		// The conditional update re-checks the return state at the write, so
		// a confirmation that committed since the read cannot be overwritten.
		if err := requests.MarkReturnRejected(ctx, request.ID, remarks); err != nil {
			if errors.Is(err, repositories.ErrRequestConflict) {
				return ErrRequestClosed
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Return rejected for borrow request %d by admin %d", requestID, actor.UserID)
	return s.requests.GetByID(ctx, requestID)
}

// CancelRequest deletes a pending request before any decision was made.
// Only the owning requester or an admin may cancel; the item was never
// marked borrowed for a pending request, so it stays untouched. A missing
// request reports the same "not pending" conflict as a decided one.
func (s *BorrowService) CancelRequest(ctx context.Context, requestID uint, actor domain.Actor) error {
	err := s.tx.InTx(ctx, func(items repositories.ItemRepository, requests repositories.BorrowRequestRepository) error {
		request, err := requests.GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotPending
			}
			return err
		}

		if request.Status != models.RequestStatusPending {
			return ErrRequestNotPending
		}
		if !actor.Role.IsAdmin() && request.RequestedByID != actor.UserID {
			return ErrNotAuthorized
		}

		// The conditional delete re-checks pending at the write. An approval
		// that committed since the read leaves zero rows and the item keeps
		// its active request.
		if err := requests.DeletePending(ctx, request.ID); err != nil {
			if errors.Is(err, repositories.ErrRequestConflict) {
				return ErrRequestNotPending
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("🗑️ Borrow request %d cancelled by user %d", requestID, actor.UserID)
	return nil
}

// BorrowerInfo is the display identity of the user holding a borrowed item
type BorrowerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ItemWithBorrower pairs an item with its current holder, if any
type ItemWithBorrower struct {
	*models.Item
	BorrowedBy *BorrowerInfo `json:"borrowed_by,omitempty"`
}

// ListAvailableItems returns every item; borrowed items carry the display
// identity of the requester holding the unique active request.
func (s *BorrowService) ListAvailableItems(ctx context.Context) ([]*ItemWithBorrower, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*ItemWithBorrower, 0, len(items))
	for _, item := range items {
		entry := &ItemWithBorrower{Item: item}
		if item.Status == models.ItemStatusBorrowed {
			active, err := s.requests.FindActiveByItem(ctx, item.ID)
			if err != nil {
				return nil, err
			}
			if active != nil && active.RequestedBy != nil {
				entry.BorrowedBy = &BorrowerInfo{
					Name:  active.RequestedBy.Name,
					Email: active.RequestedBy.Email,
				}
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

// ListMyRequests returns the caller's requests, newest first
func (s *BorrowService) ListMyRequests(ctx context.Context, userID uint) ([]*models.BorrowRequest, error) {
	return s.requests.ListByUser(ctx, userID)
}

// ListAllRequests returns every request, newest first. Admin only.
func (s *BorrowService) ListAllRequests(ctx context.Context, actor domain.Actor) ([]*models.BorrowRequest, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return s.requests.ListAll(ctx)
}
