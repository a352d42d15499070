package order

import "context"

// Repository stores orders by ID. Get returns ErrNotFound for unknown IDs and
// Save upserts. Implementations hand out copies: a loaded order only becomes
// visible to other callers once it is saved again.
type Repository interface {
	Get(ctx context.Context, id string) (*Order, error)
	Save(ctx context.Context, order *Order) error
}
