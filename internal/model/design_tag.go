package model

import "time"

type DesignTag struct {
	DesignID  string    `gorm:"column:design_id;size:36;not null;primaryKey"`
	TagID     uint64    `gorm:"column:tag_id;not null;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (DesignTag) TableName() string {
	return "design_tags"
}
