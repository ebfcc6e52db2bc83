package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/batikin/tailor-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDB_WhileServingReads(t *testing.T) {
	conn := testutil.NewDB(t)
	orders := NewOrderRepository(nil)
	users := NewUserRepository(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if _, err := orders.ListByCustomer(ctx, "cust"); err != nil && !errors.Is(err, ErrDBNotReady) {
				t.Errorf("list orders: %v", err)
			}
			if _, err := users.FindByIDs(ctx, []string{"cust"}); err != nil && !errors.Is(err, ErrDBNotReady) {
				t.Errorf("find users: %v", err)
			}
		}
	}()
	orders.SetDB(conn)
	users.SetDB(conn)
	wg.Wait()

	list, err := orders.ListByCustomer(ctx, "cust")
	require.NoError(t, err)
	assert.Empty(t, list)
}
