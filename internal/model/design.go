package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Design struct {
	DesignID         string    `gorm:"column:design_id;primaryKey;size:36" json:"design_id"`
	TailorID         string    `gorm:"column:tailor_id;size:128;not null;index" json:"tailor_id"`
	OriginalImageURL string    `gorm:"column:original_image_url;size:1024;not null" json:"original_image_url"`
	Description      string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Design) TableName() string {
	return "designs"
}

func (d *Design) BeforeCreate(*gorm.DB) error {
	if d.DesignID == "" {
		d.DesignID = uuid.NewString()
	}
	return nil
}
