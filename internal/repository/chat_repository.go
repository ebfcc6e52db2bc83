package repository

import (
	"context"

	"github.com/batikin/tailor-backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRepository interface {
	FindOrCreate(ctx context.Context, customerID, tailorID string) (*model.Chat, bool, error)
	Create(ctx context.Context, chat *model.Chat) error
	FindByPair(ctx context.Context, customerID, tailorID string) (*model.Chat, error)
	FindByID(ctx context.Context, id string) (*model.Chat, error)
	FindByUser(ctx context.Context, uid string) ([]model.Chat, error)
	CreateMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, chatID string) ([]model.Message, error)
	LatestMessages(ctx context.Context, chatIDs []string) (map[string]model.Message, error)
	FindMessageByID(ctx context.Context, id string) (*model.Message, error)
	SetTranslation(ctx context.Context, messageID, language, text string) (model.Translations, error)
	SetDB(db *gorm.DB)
}

type chatRepository struct {
	dbHandle
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	r := &chatRepository{}
	r.SetDB(db)
	return r
}

// FindOrCreate returns the chat for the pair, inserting it when absent. The insert
// ignores unique-key conflicts, so concurrent callers converge on one row.
// The bool reports whether this call created the row.
func (r *chatRepository) FindOrCreate(ctx context.Context, customerID, tailorID string) (*model.Chat, bool, error) {
	db, err := r.conn()
	if err != nil {
		return nil, false, err
	}
	cv := model.Chat{ChatID: uuid.NewString(), UserID: customerID, TailorID: tailorID}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&cv)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return &cv, true, nil
	}
	existing, err := r.FindByPair(ctx, customerID, tailorID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(chat).Error
}

func (r *chatRepository) FindByPair(ctx context.Context, customerID, tailorID string) (*model.Chat, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var cv model.Chat
	if err := db.WithContext(ctx).
		Where("user_id = ? AND tailor_id = ?", customerID, tailorID).
		First(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *chatRepository) FindByID(ctx context.Context, id string) (*model.Chat, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var cv model.Chat
	if err := db.WithContext(ctx).Where("chat_id = ?", id).First(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *chatRepository) FindByUser(ctx context.Context, uid string) ([]model.Chat, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var list []model.Chat
	if err := db.WithContext(ctx).
		Where("user_id = ? OR tailor_id = ?", uid, uid).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(msg).Error
}

func (r *chatRepository) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var msgs []model.Message
	if err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Order("message_id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// LatestMessages returns the newest message of each chat keyed by chat id.
// Chats without messages are absent from the map.
func (r *chatRepository) LatestMessages(ctx context.Context, chatIDs []string) (map[string]model.Message, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Message, len(chatIDs))
	if len(chatIDs) == 0 {
		return out, nil
	}
	latest := db.Model(&model.Message{}).
		Select("chat_id, MAX(created_at) AS max_at").
		Where("chat_id IN ?", chatIDs).
		Group("chat_id")
	var msgs []model.Message
	if err := db.WithContext(ctx).
		Table("messages AS m").
		Select("m.*").
		Joins("JOIN (?) AS t ON m.chat_id = t.chat_id AND m.created_at = t.max_at", latest).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	for _, m := range msgs {
		if prev, ok := out[m.ChatID]; ok && prev.MessageID > m.MessageID {
			continue
		}
		out[m.ChatID] = m
	}
	return out, nil
}

func (r *chatRepository) FindMessageByID(ctx context.Context, id string) (*model.Message, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var m model.Message
	if err := db.WithContext(ctx).Where("message_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// SetTranslation merges one language into the message's translation map. The row is
// read with FOR UPDATE so concurrent merges of other languages are kept.
func (r *chatRepository) SetTranslation(ctx context.Context, messageID, language, text string) (model.Translations, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var merged model.Translations
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.Message
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("message_id = ?", messageID).
			First(&m).Error; err != nil {
			return err
		}
		merged = make(model.Translations, len(m.TranslatedContent)+1)
		for k, v := range m.TranslatedContent {
			merged[k] = v
		}
		merged[language] = text
		return tx.Model(&m).
			Select("TranslatedContent").
			Updates(&model.Message{TranslatedContent: merged}).Error
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}
