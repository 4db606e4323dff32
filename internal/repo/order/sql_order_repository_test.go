package order_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/repo/order"
	"github.com/mkrupp/storefront/internal/repo/sqldb"
	"github.com/mkrupp/storefront/internal/repo/sqldb/sqldbtest"
	"github.com/mkrupp/storefront/internal/repo/user"
)

func createUser(t *testing.T, repo user.Repository, name string) int64 {
	t.Helper()

	u := &domain.User{Username: name, PasswordHash: []byte("x")}
	require.NoError(t, repo.CreateUser(context.Background(), u))

	return u.ID
}

func newOrder(userID int64, no string, createdAt time.Time) *domain.Order {
	return &domain.Order{
		UserID:          userID,
		OrderNo:         no,
		TotalAmount:     decimal.RequireFromString("25.00"),
		Status:          domain.OrderStatusPendingPayment,
		ShippingAddress: "1 Main St",
		CreatedAt:       createdAt,
		Lines: []domain.OrderLine{
			domain.NewOrderLine(1, 2, decimal.RequireFromString("10.00")),
			domain.NewOrderLine(2, 1, decimal.RequireFromString("5.00")),
		},
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	t.Parallel()

	db := sqldbtest.Open(t)
	repo := order.NewSQLOrderRepository(db)
	ctx := context.Background()
	alice := createUser(t, user.NewSQLUserRepository(db), "alice")

	o := newOrder(alice, "no-1", time.Time{})
	require.NoError(t, repo.CreateOrder(ctx, o))
	assert.NotZero(t, o.ID)
	assert.False(t, o.CreatedAt.IsZero())

	for _, line := range o.Lines {
		assert.NotZero(t, line.ID)
		assert.Equal(t, o.ID, line.OrderID)
	}

	got, ok, err := repo.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "no-1", got.OrderNo)
	assert.Equal(t, domain.OrderStatusPendingPayment, got.Status)
	assert.True(t, decimal.RequireFromString("25").Equal(got.TotalAmount))
	require.Len(t, got.Lines, 2)
	assert.True(t, decimal.RequireFromString("20").Equal(got.Lines[0].Subtotal))
	assert.True(t, decimal.RequireFromString("10").Equal(got.Lines[0].UnitPrice))

	_, ok, err = repo.GetOrder(ctx, o.ID+1)
	require.NoError(t, err)
	assert.False(t, ok)

	err = repo.CreateOrder(ctx, newOrder(alice, "no-1", time.Time{}))
	require.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.True(t, sqldb.IsUniqueViolation(err))
}

func TestSetStatus(t *testing.T) {
	t.Parallel()

	db := sqldbtest.Open(t)
	repo := order.NewSQLOrderRepository(db)
	ctx := context.Background()

	o := newOrder(createUser(t, user.NewSQLUserRepository(db), "alice"), "no-1", time.Time{})
	require.NoError(t, repo.CreateOrder(ctx, o))

	require.NoError(t, repo.SetStatus(ctx, o.ID, domain.OrderStatusShipped))

	got, _, err := repo.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, got.Status)

	assert.ErrorIs(t, repo.SetStatus(ctx, o.ID+1, domain.OrderStatusPaid), domain.ErrOrderNotFound)
}

func TestListOrders(t *testing.T) {
	t.Parallel()

	db := sqldbtest.Open(t)
	repo := order.NewSQLOrderRepository(db)
	users := user.NewSQLUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 15 {
		o := newOrder(alice, fmt.Sprintf("alice-%02d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.CreateOrder(ctx, o))
	}

	require.NoError(t, repo.CreateOrder(ctx, newOrder(bob, "bob-00", base)))

	tests := []struct {
		name      string
		filter    order.Filter
		page      domain.Pagination
		wantFirst string
		wantLen   int
		wantTotal int
	}{
		{"first page", order.Filter{UserID: alice}, domain.Pagination{Page: 1, PageSize: 10}, "alice-14", 10, 15},
		{"second page", order.Filter{UserID: alice}, domain.Pagination{Page: 2, PageSize: 10}, "alice-04", 5, 15},
		{"past the end", order.Filter{UserID: alice}, domain.Pagination{Page: 3, PageSize: 10}, "", 0, 15},
		{"other user", order.Filter{UserID: bob}, domain.Pagination{Page: 1, PageSize: 10}, "bob-00", 1, 1},
		{"all users", order.Filter{}, domain.Pagination{Page: 1, PageSize: 20}, "alice-14", 16, 16},
		{"by number", order.Filter{OrderNo: "alice-03"}, domain.Pagination{Page: 1, PageSize: 10}, "alice-03", 1, 1},
		{"number of other user", order.Filter{UserID: bob, OrderNo: "alice-03"}, domain.Pagination{Page: 1, PageSize: 10}, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			orders, total, err := repo.ListOrders(ctx, tt.filter, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			require.Len(t, orders, tt.wantLen)

			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, orders[0].OrderNo)
				assert.Empty(t, orders[0].Lines)
			}

			for i := 1; i < len(orders); i++ {
				assert.False(t, orders[i].CreatedAt.After(orders[i-1].CreatedAt))
			}
		})
	}
}
