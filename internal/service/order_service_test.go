package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/batikin/tailor-backend/internal/model"
	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOrderLifecycle_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.orderSvc.Create(ctx, "cust", "tail", "d.png")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, env.clock.Now(), o.OrderDate)

	// creating an order has no chat side effect
	_, err = env.chats.FindByPair(ctx, "cust", "tail")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	env.clock.Advance(2 * time.Hour)
	dd := "2026-05-20"
	o, err = env.orderSvc.ConfirmDelivery(ctx, o.OrderID, "tail", &dd)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInProgress, o.Status)
	require.NotNil(t, o.DeliveryDate)
	assert.Equal(t, dd, *o.DeliveryDate)

	chat, err := env.chats.FindByPair(ctx, "cust", "tail")
	require.NoError(t, err)
	msgs, err := env.chats.ListMessages(ctx, chat.ChatID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "now in progress")
	assert.Equal(t, "Order "+o.OrderID+" has been accepted and is now in progress.", msgs[0].Content)
	assert.Equal(t, "tail", msgs[0].SenderID)
	require.NotNil(t, msgs[0].Language)
	assert.Equal(t, "en", *msgs[0].Language)

	o, err = env.orderSvc.Complete(ctx, o.OrderID, "tail")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, o.Status)

	msgs, err = env.chats.ListMessages(ctx, chat.ChatID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Content, "has been completed")

	// the second side effect reused the chat
	var chats int64
	require.NoError(t, env.conn.Model(&model.Chat{}).Count(&chats).Error)
	assert.Equal(t, int64(1), chats)
	assert.Equal(t, 2, env.pub.count())

	_, err = env.orderSvc.Cancel(ctx, o.OrderID, "cust")
	assert.ErrorIs(t, err, ErrNotPendingCancel)

	unread, err := env.notifs.CountUnread(ctx, "cust")
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)
}

func TestCancel_TwentyFourHourWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	late, err := env.orderSvc.Create(ctx, "cust", "tail", "late.png")
	require.NoError(t, err)
	edge, err := env.orderSvc.Create(ctx, "cust", "tail", "edge.png")
	require.NoError(t, err)

	env.clock.Advance(24 * time.Hour)
	got, err := env.orderSvc.Cancel(ctx, edge.OrderID, "cust")
	require.NoError(t, err, "exactly 24 hours is still inside the window")
	assert.Equal(t, model.OrderStatusCancelled, got.Status)

	env.clock.Advance(time.Hour)
	_, err = env.orderSvc.Cancel(ctx, late.OrderID, "cust")
	assert.ErrorIs(t, err, ErrCancelWindowPassed)

	stored, err := env.orders.FindByID(ctx, late.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, stored.Status)

	// the window is checked before the status
	_, err = env.orderSvc.Cancel(ctx, edge.OrderID, "cust")
	assert.ErrorIs(t, err, ErrCancelWindowPassed)
}

func TestCancel_ByEitherParticipant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.orderSvc.Create(ctx, "cust", "tail", "d.png")
	require.NoError(t, err)

	_, err = env.orderSvc.Cancel(ctx, o.OrderID, "cust2")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = env.orderSvc.Cancel(ctx, "missing", "cust")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	got, err := env.orderSvc.Cancel(ctx, o.OrderID, "tail")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, got.Status)

	notes, _, err := env.notifySvc.List(ctx, "cust", true, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationOrderCancelled, notes[0].Type)

	_, err = env.orderSvc.ConfirmDelivery(ctx, o.OrderID, "tail", nil)
	assert.ErrorIs(t, err, ErrNotPendingConfirm)
}

func TestCreate_Preconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		caller   string
		tailorID string
		design   string
		want     error
	}{
		{"tailor cannot order", "tail", "tail2", "d.png", ErrOnlyCustomersOrder},
		{"unregistered caller", "ghost", "tail", "d.png", ErrOnlyCustomersOrder},
		{"missing design", "cust", "tail", " ", ErrOrderFieldsRequired},
		{"missing tailor", "cust", "", "d.png", ErrOrderFieldsRequired},
		{"target is a customer", "cust", "cust2", "d.png", ErrInvalidTailor},
		{"unknown tailor", "cust", "nobody", "d.png", ErrInvalidTailor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orderSvc.Create(ctx, tt.caller, tt.tailorID, tt.design)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var n int64
	require.NoError(t, env.conn.Model(&model.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestTailorTransitions_Authorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.orderSvc.Create(ctx, "cust", "tail", "d.png")
	require.NoError(t, err)

	_, err = env.orderSvc.ConfirmDelivery(ctx, o.OrderID, "cust", nil)
	assert.ErrorIs(t, err, ErrOnlyTailorsConfirm)
	_, err = env.orderSvc.ConfirmDelivery(ctx, o.OrderID, "tail2", nil)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = env.orderSvc.Complete(ctx, o.OrderID, "cust")
	assert.ErrorIs(t, err, ErrOnlyTailorsComplete)
	_, err = env.orderSvc.Complete(ctx, o.OrderID, "tail")
	assert.ErrorIs(t, err, ErrNotInProgress)

	o, err = env.orderSvc.ConfirmDelivery(ctx, o.OrderID, "tail", nil)
	require.NoError(t, err)
	assert.Nil(t, o.DeliveryDate)

	_, err = env.orderSvc.ConfirmDelivery(ctx, o.OrderID, "tail", nil)
	assert.ErrorIs(t, err, ErrNotPendingConfirm)
	_, err = env.orderSvc.Complete(ctx, o.OrderID, "tail2")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

type brokenChats struct {
	ChatService
}

func (brokenChats) EnsureChat(context.Context, string, string) (*model.Chat, error) {
	return nil, errors.New("chat store unavailable")
}

func TestConfirmDelivery_SideEffectFailureIsNotSurfaced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewOrderService(env.orders, env.users, brokenChats{}, nil, env.clock.Now)

	o, err := svc.Create(ctx, "cust", "tail", "d.png")
	require.NoError(t, err)
	o, err = svc.ConfirmDelivery(ctx, o.OrderID, "tail", nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInProgress, o.Status)

	stored, err := env.orders.FindByID(ctx, o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInProgress, stored.Status)
}

// racingOrders moves the order to cancelled right after the service has read it.
type racingOrders struct {
	repository.OrderRepository
	conn *gorm.DB
}

func (r racingOrders) FindForTailor(ctx context.Context, id, tailorID string) (*model.Order, error) {
	o, err := r.OrderRepository.FindForTailor(ctx, id, tailorID)
	if err != nil {
		return nil, err
	}
	if err := r.conn.Model(&model.Order{}).Where("order_id = ?", id).Update("status", model.OrderStatusCancelled).Error; err != nil {
		return nil, err
	}
	return o, nil
}

func TestConfirmDelivery_LostRaceReportsStaleState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewOrderService(racingOrders{OrderRepository: env.orders, conn: env.conn}, env.users, env.chatSvc, nil, env.clock.Now)

	o, err := svc.Create(ctx, "cust", "tail", "d.png")
	require.NoError(t, err)
	_, err = svc.ConfirmDelivery(ctx, o.OrderID, "tail", nil)
	assert.ErrorIs(t, err, ErrNotPendingConfirm)

	_, err = env.chats.FindByPair(ctx, "cust", "tail")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "no side effect after a lost race")
}

func TestOrderList_RoleScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.orderSvc.Create(ctx, "cust", "tail", "a.png")
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	second, err := env.orderSvc.Create(ctx, "cust", "tail2", "b.png")
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	_, err = env.orderSvc.Create(ctx, "cust2", "tail", "c.png")
	require.NoError(t, err)

	mine, err := env.orderSvc.List(ctx, "cust")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.OrderID, mine[0].Order.OrderID)
	assert.Equal(t, first.OrderID, mine[1].Order.OrderID)
	require.NotNil(t, mine[0].Tailor)
	assert.Equal(t, "tail2", mine[0].Tailor.UserID)
	require.NotNil(t, mine[0].Tailor.TailorDetails)
	assert.Nil(t, mine[0].Customer)

	theirs, err := env.orderSvc.List(ctx, "tail")
	require.NoError(t, err)
	require.Len(t, theirs, 2)
	assert.Equal(t, "cust2", theirs[0].Customer.UserID)
	assert.Nil(t, theirs[0].Tailor)

	_, err = env.orderSvc.List(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestOrderGet_EnrichedForParticipantsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.orderSvc.Create(ctx, "cust", "tail", "d.png")
	require.NoError(t, err)

	d, err := env.orderSvc.Get(ctx, o.OrderID, "tail")
	require.NoError(t, err)
	assert.Equal(t, "cust", d.Customer.UserID)
	assert.Equal(t, "tail", d.Tailor.UserID)
	require.NotNil(t, d.Tailor.TailorDetails)
	assert.Equal(t, 4.5, d.Tailor.TailorDetails.Rating)

	// viewing the order clears the tailor's "order placed" notification
	unread, err := env.notifs.CountUnread(ctx, "tail")
	require.NoError(t, err)
	assert.Zero(t, unread)

	_, err = env.orderSvc.Get(ctx, o.OrderID, "tail2")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
