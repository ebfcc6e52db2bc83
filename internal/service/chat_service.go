package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/batikin/tailor-backend/internal/metrics"
	"github.com/batikin/tailor-backend/internal/model"
	"github.com/batikin/tailor-backend/internal/realtime"
	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type ChatDetail struct {
	Chat        model.Chat
	Customer    *model.User
	Tailor      *model.User
	LastMessage *model.Message
}

type MessageDetail struct {
	Message model.Message
	Sender  *model.User
}

type NewMessage struct {
	Content           string
	Language          *string
	TranslatedContent model.Translations
}

type ChatService interface {
	EnsureChat(ctx context.Context, customerID, tailorID string) (*model.Chat, error)
	CheckOrCreate(ctx context.Context, uid, tailorID string) (*ChatDetail, bool, error)
	Create(ctx context.Context, uid, tailorID string) (*ChatDetail, error)
	List(ctx context.Context, uid string) ([]ChatDetail, error)
	Get(ctx context.Context, chatID, uid string) (*ChatDetail, error)
	ListMessages(ctx context.Context, chatID, uid string) ([]MessageDetail, error)
	SendMessage(ctx context.Context, chatID, uid string, in NewMessage) (*MessageDetail, error)
	AppendSystemMessage(ctx context.Context, chatID, senderID, content, language string) (*model.Message, error)
}

type chatService struct {
	chats repository.ChatRepository
	users repository.UserRepository
	pub   realtime.Publisher
}

// NewChatService publishes appended messages to pub; pub may be nil.
func NewChatService(chats repository.ChatRepository, users repository.UserRepository, pub realtime.Publisher) ChatService {
	return &chatService{chats: chats, users: users, pub: pub}
}

// EnsureChat returns the chat for the pair, creating it on first use.
func (s *chatService) EnsureChat(ctx context.Context, customerID, tailorID string) (*model.Chat, error) {
	chat, _, err := s.chats.FindOrCreate(ctx, customerID, tailorID)
	return chat, err
}

// CheckOrCreate reports whether the chat was created by this call.
func (s *chatService) CheckOrCreate(ctx context.Context, uid, tailorID string) (*ChatDetail, bool, error) {
	customer, tailor, err := s.resolvePair(ctx, uid, tailorID)
	if err != nil {
		return nil, false, err
	}
	chat, created, err := s.chats.FindOrCreate(ctx, customer.UserID, tailor.UserID)
	if err != nil {
		return nil, false, err
	}
	return &ChatDetail{Chat: *chat, Customer: customer, Tailor: tailor}, created, nil
}

func (s *chatService) Create(ctx context.Context, uid, tailorID string) (*ChatDetail, error) {
	customer, tailor, err := s.resolvePair(ctx, uid, tailorID)
	if err != nil {
		return nil, err
	}
	chat, created, err := s.chats.FindOrCreate(ctx, customer.UserID, tailor.UserID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrChatExists
	}
	return &ChatDetail{Chat: *chat, Customer: customer, Tailor: tailor}, nil
}

func (s *chatService) resolvePair(ctx context.Context, uid, tailorID string) (*model.User, *model.User, error) {
	customer, err := s.users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrOnlyCustomersChat
		}
		return nil, nil, err
	}
	if !customer.IsCustomer() {
		return nil, nil, ErrOnlyCustomersChat
	}
	if strings.TrimSpace(tailorID) == "" {
		return nil, nil, ErrInvalidTailorID
	}
	tailor, err := s.users.FindByID(ctx, tailorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTailorNotFound
		}
		return nil, nil, err
	}
	if !tailor.IsTailor() {
		return nil, nil, ErrTailorNotFound
	}
	return customer, tailor, nil
}

func (s *chatService) List(ctx context.Context, uid string) ([]ChatDetail, error) {
	chats, err := s.chats.FindByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(chats))
	userIDs := make([]string, 0, len(chats)*2)
	for _, c := range chats {
		ids = append(ids, c.ChatID)
		userIDs = append(userIDs, c.UserID, c.TailorID)
	}
	profiles, err := s.profiles(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	latest, err := s.chats.LatestMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ChatDetail, 0, len(chats))
	for _, c := range chats {
		d := ChatDetail{Chat: c, Customer: profiles[c.UserID], Tailor: profiles[c.TailorID]}
		if m, ok := latest[c.ChatID]; ok {
			d.LastMessage = &m
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *chatService) Get(ctx context.Context, chatID, uid string) (*ChatDetail, error) {
	chat, err := s.participantChat(ctx, chatID, uid)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles(ctx, []string{chat.UserID, chat.TailorID})
	if err != nil {
		return nil, err
	}
	return &ChatDetail{Chat: *chat, Customer: profiles[chat.UserID], Tailor: profiles[chat.TailorID]}, nil
}

func (s *chatService) ListMessages(ctx context.Context, chatID, uid string) ([]MessageDetail, error) {
	chat, err := s.participantChat(ctx, chatID, uid)
	if err != nil {
		return nil, err
	}
	msgs, err := s.chats.ListMessages(ctx, chat.ChatID)
	if err != nil {
		return nil, err
	}
	senderIDs := make([]string, 0, 2)
	seen := map[string]bool{}
	for _, m := range msgs {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	profiles, err := s.profiles(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	out := make([]MessageDetail, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageDetail{Message: m, Sender: profiles[m.SenderID]})
	}
	return out, nil
}

func (s *chatService) SendMessage(ctx context.Context, chatID, uid string, in NewMessage) (*MessageDetail, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrInvalidContent
	}
	chat, err := s.participantChat(ctx, chatID, uid)
	if err != nil {
		return nil, err
	}
	msg := &model.Message{
		ChatID:            chat.ChatID,
		SenderID:          uid,
		Content:           content,
		Language:          in.Language,
		TranslatedContent: in.TranslatedContent,
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	metrics.ChatMessages.WithLabelValues("user").Inc()
	s.publish(ctx, msg)

	sender, err := s.users.FindByID(ctx, uid)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &MessageDetail{Message: *msg, Sender: sender}, nil
}

// AppendSystemMessage writes a message on behalf of senderID without a participant check.
func (s *chatService) AppendSystemMessage(ctx context.Context, chatID, senderID, content, language string) (*model.Message, error) {
	msg := &model.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
		Language: &language,
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	metrics.ChatMessages.WithLabelValues("system").Inc()
	s.publish(ctx, msg)
	return msg, nil
}

func (s *chatService) participantChat(ctx context.Context, chatID, uid string) (*model.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	if !chat.HasParticipant(uid) {
		return nil, ErrForbidden
	}
	return chat, nil
}

func (s *chatService) profiles(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*model.User, len(users))
	for i := range users {
		out[users[i].UserID] = &users[i]
	}
	return out, nil
}

func (s *chatService) publish(ctx context.Context, msg *model.Message) {
	if s.pub == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("encode message for realtime feed")
		return
	}
	if err := s.pub.Publish(ctx, msg.ChatID, payload); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("chat_id", msg.ChatID).Msg("realtime publish failed")
	}
}
