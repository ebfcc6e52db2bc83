package service

import (
	"context"
	"errors"
	"strings"

	"github.com/batikin/tailor-backend/internal/model"
	"github.com/batikin/tailor-backend/internal/repository"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username          string
	Email             string
	Role              model.Role
	FullName          *string
	Location          *string
	Dialect           *string
	ProfilePictureURL *string
	Bio               *string
}

type UserService interface {
	Register(ctx context.Context, uid string, in RegisterInput) (*model.User, error)
	Get(ctx context.Context, uid string) (*model.User, error)
	UpdateMeasurements(ctx context.Context, uid string, m repository.Measurements) (*model.User, error)
	ListTailors(ctx context.Context) ([]model.User, error)
	CompletedCount(ctx context.Context, tailorID string) (int64, error)
}

type userService struct {
	users  repository.UserRepository
	orders repository.OrderRepository
}

func NewUserService(users repository.UserRepository, orders repository.OrderRepository) UserService {
	return &userService{users: users, orders: orders}
}

// Register creates the caller's profile. Tailors always get a TailorDetails row.
func (s *userService) Register(ctx context.Context, uid string, in RegisterInput) (*model.User, error) {
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if _, err := s.users.FindByID(ctx, uid); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	username := strings.TrimSpace(in.Username)
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	u := &model.User{
		UserID:            uid,
		Username:          username,
		Email:             strings.TrimSpace(in.Email),
		Role:              in.Role,
		FullName:          in.FullName,
		Location:          in.Location,
		Dialect:           in.Dialect,
		ProfilePictureURL: in.ProfilePictureURL,
	}
	if in.Role == model.RoleTailor {
		u.TailorDetails = &model.TailorDetails{UserID: uid, Bio: in.Bio}
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, uid string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) UpdateMeasurements(ctx context.Context, uid string, m repository.Measurements) (*model.User, error) {
	u, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !u.IsCustomer() {
		return nil, ErrOnlyCustomersMeasure
	}
	if err := s.users.UpdateMeasurements(ctx, uid, m); err != nil {
		return nil, err
	}
	return s.Get(ctx, uid)
}

func (s *userService) ListTailors(ctx context.Context) ([]model.User, error) {
	return s.users.ListByRole(ctx, model.RoleTailor)
}

func (s *userService) CompletedCount(ctx context.Context, tailorID string) (int64, error) {
	return s.orders.CountByTailorAndStatus(ctx, tailorID, model.OrderStatusCompleted)
}
