package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Users & Auth
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'department'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Master Tables
// ============================================================

// Manufacturer represents equipment manufacturers (Master)
type Manufacturer struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Manufacturer) TableName() string {
	return "manufacturers"
}

// Location represents storage/deployment locations (Master)
type Location struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Location) TableName() string {
	return "locations"
}

// ============================================================
// Inventory
// ============================================================

// Item condition
const (
	ConditionGood        = "good"
	ConditionDamaged     = "damaged"
	ConditionNeedsRepair = "needs repair"
)

// Item status. Status is owned by the borrow lifecycle engine: borrowed
// if and only if exactly one approved, not-yet-returned request exists.
const (
	ItemStatusAvailable = "available"
	ItemStatusBorrowed  = "borrowed"
)

// Item represents items table
type Item struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ItemName       string     `gorm:"size:150;not null" json:"item_name"`
	Description    string     `gorm:"type:text" json:"description"`
	SerialNo       string     `gorm:"size:100;index;not null" json:"serial_no"`
	ManufacturerID *uint      `json:"manufacturer_id"`
	Model          string     `gorm:"size:100;not null" json:"model"`
	DateOfPurchase *time.Time `gorm:"type:date" json:"date_of_purchase"`
	Quantity       int        `gorm:"default:1" json:"quantity"`
	Condition      string     `gorm:"size:20;default:'good'" json:"condition"`
	Status         string     `gorm:"size:20;not null;default:'available';index" json:"status"`
	CreatedByID    uint       `gorm:"not null" json:"created_by_id"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Manufacturer *Manufacturer `gorm:"foreignKey:ManufacturerID" json:"manufacturer,omitempty"`
	Locations    []Location    `gorm:"many2many:item_locations" json:"locations,omitempty"`
	CreatedBy    *User         `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

func (Item) TableName() string {
	return "items"
}

// ============================================================
// Borrow Requests
// ============================================================

// Borrow request status
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// Return sub-status
const (
	ReturnStatusNone      = "none"
	ReturnStatusRequested = "requested"
	ReturnStatusApproved  = "approved"
	ReturnStatusRejected  = "rejected"
)

// BorrowRequest represents borrow_requests table. Status, ReturnRequested
// and ReturnApproved are written only by the lifecycle engine, in the same
// transaction as the linked item's status.
type BorrowRequest struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ItemID          uint       `gorm:"not null;index" json:"item_id"`
	RequestedByID   uint       `gorm:"not null;index" json:"requested_by_id"`
	Reason          string     `gorm:"type:text;not null" json:"reason"`
	Status          string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AdminRemarks    string     `gorm:"type:text" json:"admin_remarks"`
	ApprovedByID    *uint      `json:"approved_by_id"`
	BorrowDate      *time.Time `json:"borrow_date"`
	ReturnedDate    *time.Time `json:"returned_date"`
	ReturnRequested bool       `gorm:"default:false" json:"return_requested"`
	ReturnApproved  bool       `gorm:"default:false" json:"return_approved"`
	ReturnStatus    string     `gorm:"size:20;not null;default:'none'" json:"return_status"`
	ReturnRemarks   string     `gorm:"type:text" json:"return_remarks"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Item        *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	RequestedBy *User `gorm:"foreignKey:RequestedByID" json:"requested_by,omitempty"`
	ApprovedBy  *User `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
}

func (BorrowRequest) TableName() string {
	return "borrow_requests"
}

// IsClosed reports whether the request reached a terminal combination:
// rejected, or returned with approval. Closed requests accept no further
// state mutation.
func (r *BorrowRequest) IsClosed() bool {
	return r.Status == RequestStatusRejected || r.ReturnApproved
}

// IsActive reports whether the request currently justifies the item's
// borrowed status.
func (r *BorrowRequest) IsActive() bool {
	return r.Status == RequestStatusApproved && !r.ReturnApproved
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Manufacturer{},
		&Location{},
		&Item{},
		&BorrowRequest{},
	)
}
