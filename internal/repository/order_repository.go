package repository

import (
	"context"

	"github.com/batikin/tailor-backend/internal/model"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindForParticipant(ctx context.Context, id, uid string) (*model.Order, error)
	FindForTailor(ctx context.Context, id, tailorID string) (*model.Order, error)
	Transition(ctx context.Context, id string, from, to model.OrderStatus, extra map[string]interface{}) (int64, error)
	ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error)
	ListByTailor(ctx context.Context, tailorID string) ([]model.Order, error)
	CountByTailorAndStatus(ctx context.Context, tailorID string, status model.OrderStatus) (int64, error)
	SetDB(db *gorm.DB)
}

type orderRepository struct {
	dbHandle
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	r := &orderRepository{}
	r.SetDB(db)
	return r
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(o).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var o model.Order
	if err := db.WithContext(ctx).Where("order_id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// FindForParticipant only matches when uid is the order's customer or tailor.
func (r *orderRepository) FindForParticipant(ctx context.Context, id, uid string) (*model.Order, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var o model.Order
	if err := db.WithContext(ctx).
		Where("order_id = ?", id).
		Where(db.Where("user_id = ?", uid).Or("tailor_id = ?", uid)).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) FindForTailor(ctx context.Context, id, tailorID string) (*model.Order, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var o model.Order
	if err := db.WithContext(ctx).
		Where("order_id = ? AND tailor_id = ?", id, tailorID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// Transition moves the order from one status to another and returns the rows changed.
// Zero rows means the order was no longer in the from status.
func (r *orderRepository) Transition(ctx context.Context, id string, from, to model.OrderStatus, extra map[string]interface{}) (int64, error) {
	db, err := r.conn()
	if err != nil {
		return 0, err
	}
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := db.WithContext(ctx).
		Model(&model.Order{}).
		Where("order_id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var list []model.Order
	if err := db.WithContext(ctx).
		Where("user_id = ?", customerID).
		Order("order_date DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) ListByTailor(ctx context.Context, tailorID string) ([]model.Order, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var list []model.Order
	if err := db.WithContext(ctx).
		Where("tailor_id = ?", tailorID).
		Order("order_date DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) CountByTailorAndStatus(ctx context.Context, tailorID string, status model.OrderStatus) (int64, error) {
	db, err := r.conn()
	if err != nil {
		return 0, err
	}
	var cnt int64
	if err := db.WithContext(ctx).
		Model(&model.Order{}).
		Where("tailor_id = ? AND status = ?", tailorID, status).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}
