package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat pairs one customer with one tailor; the pair is unique.
type Chat struct {
	ChatID    string    `gorm:"column:chat_id;primaryKey;size:36" json:"chat_id"`
	UserID    string    `gorm:"column:user_id;size:128;not null;uniqueIndex:uniq_chat_pair" json:"user_id"`
	TailorID  string    `gorm:"column:tailor_id;size:128;not null;uniqueIndex:uniq_chat_pair;index" json:"tailor_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Chat) TableName() string {
	return "chats"
}

func (c *Chat) BeforeCreate(*gorm.DB) error {
	if c.ChatID == "" {
		c.ChatID = uuid.NewString()
	}
	return nil
}

func (c *Chat) HasParticipant(uid string) bool {
	return uid != "" && (c.UserID == uid || c.TailorID == uid)
}
