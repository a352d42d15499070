package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
)

// OrderRepository keeps orders in a map. It stores and hands out deep copies, so
// a change made to a loaded order is invisible until Save is called with it.
// The mutex protects the map only: a load-modify-save sequence is not atomic.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return order.Clone(), nil
}

// Save upserts by order ID, replacing any prior entry.
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if order == nil || order.ID() == "" {
		return fmt.Errorf("order repository: %w", domain.ErrInvalidID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[order.ID()] = order.Clone()
	return nil
}

// Len reports how many orders are stored.
func (r *OrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

// Clear drops every stored order.
func (r *OrderRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = make(map[string]*domain.Order)
}
