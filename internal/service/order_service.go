package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/batikin/tailor-backend/internal/metrics"
	"github.com/batikin/tailor-backend/internal/model"
	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// CancelWindow is how long after order_date a pending order may still be cancelled.
const CancelWindow = 24 * time.Hour

// OrderDetail carries the order with whichever participant profiles were loaded.
type OrderDetail struct {
	Order    model.Order
	Customer *model.User
	Tailor   *model.User
}

type OrderService interface {
	Create(ctx context.Context, customerID, tailorID, designURL string) (*model.Order, error)
	Get(ctx context.Context, orderID, uid string) (*OrderDetail, error)
	List(ctx context.Context, uid string) ([]OrderDetail, error)
	Cancel(ctx context.Context, orderID, uid string) (*model.Order, error)
	ConfirmDelivery(ctx context.Context, orderID, uid string, deliveryDate *string) (*model.Order, error)
	Complete(ctx context.Context, orderID, uid string) (*model.Order, error)
}

type orderService struct {
	orders repository.OrderRepository
	users  repository.UserRepository
	chats  ChatService
	notify NotificationService
	now    func() time.Time
}

// NewOrderService wires the lifecycle. notify may be nil; now defaults to time.Now.
func NewOrderService(orders repository.OrderRepository, users repository.UserRepository, chats ChatService, notify NotificationService, now func() time.Time) OrderService {
	if now == nil {
		now = time.Now
	}
	return &orderService{orders: orders, users: users, chats: chats, notify: notify, now: now}
}

func (s *orderService) Create(ctx context.Context, customerID, tailorID, designURL string) (*model.Order, error) {
	caller, err := s.users.FindByID(ctx, customerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !caller.IsCustomer() {
		return nil, ErrOnlyCustomersOrder
	}
	tailorID = strings.TrimSpace(tailorID)
	designURL = strings.TrimSpace(designURL)
	if tailorID == "" || designURL == "" {
		return nil, ErrOrderFieldsRequired
	}
	tailor, err := s.users.FindByID(ctx, tailorID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !tailor.IsTailor() {
		return nil, ErrInvalidTailor
	}

	o := &model.Order{
		UserID:    customerID,
		TailorID:  tailorID,
		DesignURL: designURL,
		Status:    model.OrderStatusPending,
		OrderDate: s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	metrics.OrderTransitions.WithLabelValues(string(model.OrderStatusPending)).Inc()
	s.notifyUser(ctx, tailorID, model.NotificationOrderPlaced, "New order", displayName(caller)+" placed a new order.", o.OrderID)
	return o, nil
}

func (s *orderService) Get(ctx context.Context, orderID, uid string) (*OrderDetail, error) {
	o, err := s.participantOrder(ctx, orderID, uid)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, []string{o.UserID, o.TailorID})
	if err != nil {
		return nil, err
	}
	d := &OrderDetail{Order: *o}
	for i := range users {
		switch users[i].UserID {
		case o.UserID:
			d.Customer = &users[i]
		case o.TailorID:
			d.Tailor = &users[i]
		}
	}
	if s.notify != nil {
		if err := s.notify.MarkByOrder(ctx, uid, o.OrderID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("order_id", o.OrderID).Msg("mark order notifications read failed")
		}
	}
	return d, nil
}

// List returns the caller's orders, newest first, with the counterpart's profile.
func (s *orderService) List(ctx context.Context, uid string) ([]OrderDetail, error) {
	caller, err := s.users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var orders []model.Order
	switch caller.Role {
	case model.RoleCustomer:
		orders, err = s.orders.ListByCustomer(ctx, uid)
	case model.RoleTailor:
		orders, err = s.orders.ListByTailor(ctx, uid)
	default:
		return nil, ErrInvalidRole
	}
	if err != nil {
		return nil, err
	}

	counterpartIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		if caller.IsCustomer() {
			counterpartIDs = append(counterpartIDs, o.TailorID)
		} else {
			counterpartIDs = append(counterpartIDs, o.UserID)
		}
	}
	users, err := s.users.FindByIDs(ctx, counterpartIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].UserID] = &users[i]
	}

	out := make([]OrderDetail, 0, len(orders))
	for _, o := range orders {
		d := OrderDetail{Order: o}
		if caller.IsCustomer() {
			d.Tailor = byID[o.TailorID]
		} else {
			d.Customer = byID[o.UserID]
		}
		out = append(out, d)
	}
	return out, nil
}

// Cancel checks the 24-hour window before the status, so a stale order reports the
// window error whatever state it is in. Exactly 24 hours is still allowed.
func (s *orderService) Cancel(ctx context.Context, orderID, uid string) (*model.Order, error) {
	o, err := s.participantOrder(ctx, orderID, uid)
	if err != nil {
		return nil, err
	}
	if s.now().Sub(o.OrderDate) > CancelWindow {
		return nil, ErrCancelWindowPassed
	}
	if o.Status != model.OrderStatusPending {
		return nil, ErrNotPendingCancel
	}
	if err := s.transition(ctx, o, model.OrderStatusCancelled, nil, ErrNotPendingCancel); err != nil {
		return nil, err
	}

	counterpart := o.TailorID
	if uid == o.TailorID {
		counterpart = o.UserID
	}
	s.notifyUser(ctx, counterpart, model.NotificationOrderCancelled, "Order cancelled", fmt.Sprintf("Order %s was cancelled.", o.OrderID), o.OrderID)
	return s.reload(ctx, o), nil
}

func (s *orderService) ConfirmDelivery(ctx context.Context, orderID, uid string, deliveryDate *string) (*model.Order, error) {
	if err := s.requireTailor(ctx, uid, ErrOnlyTailorsConfirm); err != nil {
		return nil, err
	}
	o, err := s.tailorOrder(ctx, orderID, uid)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusPending {
		return nil, ErrNotPendingConfirm
	}
	var extra map[string]interface{}
	if deliveryDate != nil && strings.TrimSpace(*deliveryDate) != "" {
		extra = map[string]interface{}{"delivery_date": *deliveryDate}
	}
	if err := s.transition(ctx, o, model.OrderStatusInProgress, extra, ErrNotPendingConfirm); err != nil {
		return nil, err
	}

	s.announce(ctx, o, fmt.Sprintf("Order %s has been accepted and is now in progress.", o.OrderID))
	s.notifyUser(ctx, o.UserID, model.NotificationOrderAccepted, "Order accepted", "Your tailor has started working on your order.", o.OrderID)
	return s.reload(ctx, o), nil
}

func (s *orderService) Complete(ctx context.Context, orderID, uid string) (*model.Order, error) {
	if err := s.requireTailor(ctx, uid, ErrOnlyTailorsComplete); err != nil {
		return nil, err
	}
	o, err := s.tailorOrder(ctx, orderID, uid)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusInProgress {
		return nil, ErrNotInProgress
	}
	if err := s.transition(ctx, o, model.OrderStatusCompleted, nil, ErrNotInProgress); err != nil {
		return nil, err
	}

	s.announce(ctx, o, fmt.Sprintf("Order %s has been completed.", o.OrderID))
	s.notifyUser(ctx, o.UserID, model.NotificationOrderCompleted, "Order completed", "Your order is ready.", o.OrderID)
	return s.reload(ctx, o), nil
}

// transition applies a conditional status update. When another request moved the
// order first, no row matches and stale is returned.
func (s *orderService) transition(ctx context.Context, o *model.Order, to model.OrderStatus, extra map[string]interface{}, stale error) error {
	n, err := s.orders.Transition(ctx, o.OrderID, o.Status, to, extra)
	if err != nil {
		return err
	}
	if n == 0 {
		return stale
	}
	zerolog.Ctx(ctx).Info().
		Str("order_id", o.OrderID).
		Str("from", string(o.Status)).
		Str("to", string(to)).
		Msg("order transition")
	o.Status = to
	if dd, ok := extra["delivery_date"].(string); ok {
		o.DeliveryDate = &dd
	}
	metrics.OrderTransitions.WithLabelValues(string(to)).Inc()
	return nil
}

// announce posts a status message from the tailor into the pair's chat. Failures are
// logged only; the transition has already been committed.
func (s *orderService) announce(ctx context.Context, o *model.Order, content string) {
	log := zerolog.Ctx(ctx).With().Str("order_id", o.OrderID).Logger()
	chat, err := s.chats.EnsureChat(ctx, o.UserID, o.TailorID)
	if err != nil {
		log.Warn().Err(err).Msg("order chat side effect: ensure chat failed")
		return
	}
	if _, err := s.chats.AppendSystemMessage(ctx, chat.ChatID, o.TailorID, content, "en"); err != nil {
		log.Warn().Err(err).Str("chat_id", chat.ChatID).Msg("order chat side effect: append message failed")
	}
}

func (s *orderService) notifyUser(ctx context.Context, userID, typ, title, body, orderID string) {
	if s.notify == nil {
		return
	}
	s.notify.Notify(ctx, userID, typ, title, body, &orderID, nil)
}

func (s *orderService) requireTailor(ctx context.Context, uid string, denied error) error {
	caller, err := s.users.FindByID(ctx, uid)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if !caller.IsTailor() {
		return denied
	}
	return nil
}

func (s *orderService) participantOrder(ctx context.Context, orderID, uid string) (*model.Order, error) {
	o, err := s.orders.FindForParticipant(ctx, orderID, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *orderService) tailorOrder(ctx context.Context, orderID, tailorID string) (*model.Order, error) {
	o, err := s.orders.FindForTailor(ctx, orderID, tailorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// reload re-reads the order for its fresh updated_at, keeping o when that fails.
func (s *orderService) reload(ctx context.Context, o *model.Order) *model.Order {
	fresh, err := s.orders.FindByID(ctx, o.OrderID)
	if err != nil {
		return o
	}
	return fresh
}

func displayName(u *model.User) string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}
