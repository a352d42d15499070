package payment

import (
	"context"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/money"
)

// Gateway charges an order's amount with an external payment processor.
// (false, nil) means the charge was declined; a non-nil error means the
// processor could not be reached or answered garbage.
type Gateway interface {
	Charge(ctx context.Context, orderID string, amount money.Money) (bool, error)
}
