package service

import (
	"context"
	"errors"

	"github.com/GunarsK-portfolio/user-service/internal/models"
	"github.com/GunarsK-portfolio/user-service/internal/repository"
)

// ErrForbidden is returned when the caller may not modify the target user.
var ErrForbidden = errors.New("forbidden")

// UserService provides CRUD on user records.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, name, email string) (*models.User, error)
	Update(ctx context.Context, callerID, id int64, patch models.UserPatch) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a UserService.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// Create adds a user without a password; such a user cannot log in until
// one is set out of band.
func (s *userService) Create(ctx context.Context, name, email string) (*models.User, error) {
	if name == "" || email == "" {
		return nil, ErrMissingFields
	}

	user := &models.User{Name: name, Email: email, Role: models.RoleUser}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies patch to user id. Callers may update themselves; admins may
// update anyone.
func (s *userService) Update(ctx context.Context, callerID, id int64, patch models.UserPatch) (*models.User, error) {
	if callerID != id {
		caller, err := s.userRepo.FindByID(ctx, callerID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, ErrForbidden
			}
			return nil, err
		}
		if !caller.IsAdmin() {
			return nil, ErrForbidden
		}
	}
	return s.userRepo.Update(ctx, id, patch)
}
