package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/batikin/tailor-backend/internal/model"
	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/batikin/tailor-backend/internal/testutil"
	"gorm.io/gorm"
)

type testEnv struct {
	conn   *gorm.DB
	users  repository.UserRepository
	chats  repository.ChatRepository
	orders repository.OrderRepository
	notifs repository.NotificationRepository
	pub    *recordingPublisher
	clock  *fakeClock

	chatSvc   ChatService
	notifySvc NotificationService
	orderSvc  OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := testutil.NewDB(t)
	env := &testEnv{
		conn:   conn,
		users:  repository.NewUserRepository(conn),
		chats:  repository.NewChatRepository(conn),
		orders: repository.NewOrderRepository(conn),
		notifs: repository.NewNotificationRepository(conn),
		pub:    &recordingPublisher{},
		clock:  &fakeClock{t: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)},
	}
	env.chatSvc = NewChatService(env.chats, env.users, env.pub)
	env.notifySvc = NewNotificationService(env.notifs)
	env.orderSvc = NewOrderService(env.orders, env.users, env.chatSvc, env.notifySvc, env.clock.Now)

	testutil.SeedUser(t, conn, "cust", model.RoleCustomer)
	testutil.SeedUser(t, conn, "cust2", model.RoleCustomer)
	testutil.SeedUser(t, conn, "tail", model.RoleTailor)
	testutil.SeedUser(t, conn, "tail2", model.RoleTailor)
	return env
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type published struct {
	chatID  string
	payload []byte
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
}

func (p *recordingPublisher) Publish(_ context.Context, chatID string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{chatID: chatID, payload: payload})
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}
