package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/money"
	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *OrderRepository {
	t.Helper()
	repo, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func orderWithLines(t *testing.T, id string) *domain.Order {
	t.Helper()
	o, err := domain.New(id, "customer-1")
	require.NoError(t, err)
	for _, l := range []struct {
		id, price string
		qty       int
	}{
		{"p-1", "100", 2},
		{"p-2", "49.99", 3},
	} {
		line, err := domain.NewLine(l.id, "Product "+l.id, money.MustNew(l.price, "USD"), l.qty)
		require.NoError(t, err)
		require.NoError(t, o.AddLine(line))
	}
	return o
}

func TestGetMissing(t *testing.T) {
	repo := openMemory(t)
	_, err := repo.Get(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "not found")
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openMemory(t)
	o := orderWithLines(t, "order-1")

	require.NoError(t, repo.Save(ctx, o))
	got, err := repo.Get(ctx, "order-1")
	require.NoError(t, err)

	assert.Equal(t, "customer-1", got.CustomerID())
	assert.Equal(t, domain.StatusCreated, got.Status())
	assert.Equal(t, o.CreatedAt(), got.CreatedAt())
	assert.Equal(t, o.UpdatedAt(), got.UpdatedAt())
	assert.True(t, got.TotalAmount().Equal(money.MustNew("349.97", "USD")), "total %s", got.TotalAmount())

	lines := got.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "p-1", lines[0].ProductID())
	assert.Equal(t, "Product p-1", lines[0].ProductName())
	assert.Equal(t, 2, lines[0].Quantity())
	assert.Equal(t, "p-2", lines[1].ProductID())
	assert.True(t, lines[1].UnitPrice().Equal(money.MustNew("49.99", "USD")))
}

func TestSaveReplacesLinesAndStatus(t *testing.T) {
	ctx := context.Background()
	repo := openMemory(t)
	o := orderWithLines(t, "order-1")
	require.NoError(t, repo.Save(ctx, o))

	require.NoError(t, o.RemoveLine("p-1"))
	require.NoError(t, o.Pay())
	require.NoError(t, repo.Save(ctx, o))

	got, err := repo.Get(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, got.Status())
	require.Len(t, got.Lines(), 1)
	assert.Equal(t, "p-2", got.Lines()[0].ProductID())
}

func TestUnsavedChangesAreInvisible(t *testing.T) {
	ctx := context.Background()
	repo := openMemory(t)
	require.NoError(t, repo.Save(ctx, orderWithLines(t, "order-1")))

	loaded, err := repo.Get(ctx, "order-1")
	require.NoError(t, err)
	require.NoError(t, loaded.Pay())

	again, err := repo.Get(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCreated, again.Status())
}

func TestEmptyOrderRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openMemory(t)
	o, err := domain.New("order-empty", "customer-1")
	require.NoError(t, err)
	require.NoError(t, o.Cancel())
	require.NoError(t, repo.Save(ctx, o))

	got, err := repo.Get(ctx, "order-empty")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status())
	assert.Empty(t, got.Lines())
}

func TestSaveNil(t *testing.T) {
	repo := openMemory(t)
	assert.ErrorIs(t, repo.Save(context.Background(), nil), domain.ErrInvalidID)
}

func TestFileDatabasePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "orders.db")

	repo, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, orderWithLines(t, "order-1")))
	require.NoError(t, repo.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "order-1")
	require.NoError(t, err)
	assert.Len(t, got.Lines(), 2)
}

func TestCorruptStatusIsRejected(t *testing.T) {
	ctx := context.Background()
	repo := openMemory(t)
	require.NoError(t, repo.Save(ctx, orderWithLines(t, "order-1")))

	_, err := repo.db.ExecContext(ctx, `UPDATE orders SET status = 'SHIPPED' WHERE id = ?`, "order-1")
	require.NoError(t, err)

	_, err = repo.Get(ctx, "order-1")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
