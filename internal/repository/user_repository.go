package repository

import (
	"context"

	"github.com/batikin/tailor-backend/internal/model"
	"gorm.io/gorm"
)

// Measurements holds the body measurements a customer may update; nil fields are left unchanged.
type Measurements struct {
	RightArmLength  *float64
	ShoulderWidth   *float64
	LeftArmLength   *float64
	UpperBodyHeight *float64
	HipWidth        *float64
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	UpdateMeasurements(ctx context.Context, id string, m Measurements) error
	SetDB(db *gorm.DB)
}

type userRepository struct {
	dbHandle
}

func NewUserRepository(db *gorm.DB) UserRepository {
	r := &userRepository{}
	r.SetDB(db)
	return r
}

// Create inserts the user and, for tailors, its TailorDetails row in one transaction.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := db.WithContext(ctx).
		Preload("TailorDetails").
		Where("user_id = ?", id).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var list []model.User
	if len(ids) == 0 {
		return list, nil
	}
	if err := db.WithContext(ctx).
		Preload("TailorDetails").
		Where("user_id IN ?", ids).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var list []model.User
	if err := db.WithContext(ctx).
		Preload("TailorDetails").
		Where("role = ?", role).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepository) UpdateMeasurements(ctx context.Context, id string, m Measurements) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	updates := map[string]interface{}{}
	if m.RightArmLength != nil {
		updates["right_arm_length"] = *m.RightArmLength
	}
	if m.ShoulderWidth != nil {
		updates["shoulder_width"] = *m.ShoulderWidth
	}
	if m.LeftArmLength != nil {
		updates["left_arm_length"] = *m.LeftArmLength
	}
	if m.UpperBodyHeight != nil {
		updates["upper_body_height"] = *m.UpperBodyHeight
	}
	if m.HipWidth != nil {
		updates["hip_width"] = *m.HipWidth
	}
	if len(updates) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(updates).Error
}
