package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Translations maps a target language name to the translated text.
type Translations map[string]string

type Message struct {
	MessageID         string       `gorm:"column:message_id;primaryKey;size:36" json:"message_id"`
	ChatID            string       `gorm:"column:chat_id;size:36;not null;index:idx_messages_chat_created" json:"chat_id"`
	SenderID          string       `gorm:"column:sender_id;size:128;not null;index" json:"sender_id"`
	Content           string       `gorm:"column:content;type:text;not null" json:"content"`
	TranslatedContent Translations `gorm:"column:translated_content;type:text;serializer:json" json:"translated_content"`
	Language          *string      `gorm:"column:language;size:32" json:"language"`
	CreatedAt         time.Time    `gorm:"autoCreateTime;precision:6;index:idx_messages_chat_created" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.MessageID == "" {
		m.MessageID = uuid.NewString()
	}
	return nil
}
