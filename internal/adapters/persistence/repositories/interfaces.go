package repositories

import (
	"context"
	"errors"
	"time"

	"assetdesk/internal/adapters/persistence/models"
)

// ErrStatusConflict is returned by ItemRepository.SetStatus when the
// conditional update matched no row, i.e. another caller changed the item's
// status first. The losing caller must abort its whole transaction.
var ErrStatusConflict = errors.New("item status changed concurrently")

// ErrRequestConflict is the borrow request counterpart: a conditional request
// write matched no row because the request moved out of the expected state
// since it was read.
var ErrRequestConflict = errors.New("borrow request changed concurrently")

// ItemRepository defines the item store contract. Status writes go through
// SetStatus only, so availability flips are always compare-and-swap.
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uint) (*models.Item, error)
	List(ctx context.Context) ([]*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uint) error
	ReplaceLocations(ctx context.Context, item *models.Item, locationIDs []uint) error

	// SetStatus flips the item status from one value to another in a single
	// conditional UPDATE. Returns ErrStatusConflict when the item was not in
	// the expected source status.
	SetStatus(ctx context.Context, id uint, from, to string) error
}

// BorrowRequestRepository defines the borrow request store contract
type BorrowRequestRepository interface {
	Create(ctx context.Context, request *models.BorrowRequest) error
	GetByID(ctx context.Context, id uint) (*models.BorrowRequest, error)
	Update(ctx context.Context, request *models.BorrowRequest) error
	Delete(ctx context.Context, id uint) error

	// DeletePending removes a request only while it is still pending, in one
	// conditional DELETE. Returns ErrRequestConflict when the request is gone
	// or was decided since it was read.
	DeletePending(ctx context.Context, id uint) error

	// MarkReturnRejected flips the return sub-status to rejected, but only
	// while the return is requested and not yet approved. Returns
	// ErrRequestConflict when a concurrent confirmation got there first.
	MarkReturnRejected(ctx context.Context, id uint, remarks string) error

	// FindActiveByItemAndUser returns the caller's open request for an item:
	// status in {pending, approved} and not yet return-approved. Nil when none.
	FindActiveByItemAndUser(ctx context.Context, itemID, userID uint) (*models.BorrowRequest, error)

	// FindActiveByItem returns the single approved, not-yet-returned request
	// holding an item, with the requester preloaded. Nil when none.
	FindActiveByItem(ctx context.Context, itemID uint) (*models.BorrowRequest, error)

	ListByUser(ctx context.Context, userID uint) ([]*models.BorrowRequest, error)
	ListAll(ctx context.Context) ([]*models.BorrowRequest, error)

	// ListOverdue returns approved, unreturned requests borrowed before the
	// cutoff, requester and item preloaded. Consumed by the reminder job.
	ListOverdue(ctx context.Context, cutoff time.Time) ([]*models.BorrowRequest, error)
}

// BorrowTxRunner runs a function with item and request repositories bound to
// one database transaction, so request and item mutations commit or roll
// back together.
type BorrowTxRunner interface {
	InTx(ctx context.Context, fn func(items ItemRepository, requests BorrowRequestRepository) error) error
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}
