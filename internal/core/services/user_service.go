package services

import (
	"context"
	"errors"

	"assetdesk/internal/adapters/persistence/models"
	"assetdesk/internal/adapters/persistence/repositories"
	"assetdesk/internal/core/domain"
	"assetdesk/internal/pkg/pagination"

	"gorm.io/gorm"
)

// UserService handles admin-side user management
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// List returns a paginated user listing. Admin only, enforced by the caller.
func (s *UserService) List(ctx context.Context, p *pagination.Params) ([]*models.UserResponse, *pagination.Meta, error) {
	users, total, err := s.userRepo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	return responses, pagination.GetMeta(p, total), nil
}

// UpdateUserInput represents fields an admin may change on a user
type UpdateUserInput struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// Update applies role or activation changes to a user
func (s *UserService) Update(ctx context.Context, id uint, input *UpdateUserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Role != nil {
		if !domain.Role(*input.Role).Valid() {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}
