package repository

import (
	"context"

	"github.com/batikin/tailor-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DesignRepository interface {
	Create(ctx context.Context, d *model.Design, tagIDs []uint64) error
	List(ctx context.Context, limit, offset int) ([]model.Design, int64, error)
	TagIDsByDesign(ctx context.Context, designIDs []string) (map[string][]uint64, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
	FindTagsByIDs(ctx context.Context, ids []uint64) ([]model.Tag, error)
	EnsureTag(ctx context.Context, name string) (*model.Tag, error)
	SetDB(db *gorm.DB)
}

type designRepository struct {
	dbHandle
}

func NewDesignRepository(db *gorm.DB) DesignRepository {
	r := &designRepository{}
	r.SetDB(db)
	return r
}

// Create inserts the design and its tag links atomically.
func (r *designRepository) Create(ctx context.Context, d *model.Design, tagIDs []uint64) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		if len(tagIDs) == 0 {
			return nil
		}
		links := make([]model.DesignTag, 0, len(tagIDs))
		for _, id := range tagIDs {
			links = append(links, model.DesignTag{DesignID: d.DesignID, TagID: id})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
}

func (r *designRepository) List(ctx context.Context, limit, offset int) ([]model.Design, int64, error) {
	db, err := r.conn()
	if err != nil {
		return nil, 0, err
	}
	var (
		list  []model.Design
		total int64
	)
	if err := db.WithContext(ctx).Model(&model.Design{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *designRepository) TagIDsByDesign(ctx context.Context, designIDs []string) (map[string][]uint64, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]uint64, len(designIDs))
	if len(designIDs) == 0 {
		return out, nil
	}
	var links []model.DesignTag
	if err := db.WithContext(ctx).
		Where("design_id IN ?", designIDs).
		Order("tag_id ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	for _, l := range links {
		out[l.DesignID] = append(out[l.DesignID], l.TagID)
	}
	return out, nil
}

func (r *designRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var tags []model.Tag
	if err := db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *designRepository) FindTagsByIDs(ctx context.Context, ids []uint64) ([]model.Tag, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var tags []model.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *designRepository) EnsureTag(ctx context.Context, name string) (*model.Tag, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	tag := model.Tag{Name: name}
	if err := db.WithContext(ctx).
		Where("name = ?", name).
		FirstOrCreate(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}
