package order

import (
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/money"
	"github.com/shopspring/decimal"
)

// Snapshot is the persisted form of an Order.
type Snapshot struct {
	ID         string
	CustomerID string
	Status     Status
	Lines      []LineSnapshot
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type LineSnapshot struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Currency    string
	Quantity    int
}

func (o *Order) Snapshot() Snapshot {
	lines := make([]LineSnapshot, 0, len(o.lines))
	for _, l := range o.lines {
		lines = append(lines, LineSnapshot{
			ProductID:   l.ProductID(),
			ProductName: l.ProductName(),
			UnitPrice:   l.UnitPrice().Amount(),
			Currency:    l.UnitPrice().Currency(),
			Quantity:    l.Quantity(),
		})
	}
	return Snapshot{
		ID:         o.id,
		CustomerID: o.customerID,
		Status:     o.Status(),
		Lines:      lines,
		CreatedAt:  o.createdAt,
		UpdatedAt:  o.updatedAt,
	}
}

// Rehydrate rebuilds an Order from a snapshot, re-checking every invariant the
// aggregate enforces on mutation.
func Rehydrate(s Snapshot) (*Order, error) {
	o, err := New(s.ID, s.CustomerID)
	if err != nil {
		return nil, err
	}
	for _, ls := range s.Lines {
		price, err := money.New(ls.UnitPrice, ls.Currency)
		if err != nil {
			return nil, fmt.Errorf("order %s: line %s: %w", s.ID, ls.ProductID, err)
		}
		line, err := NewLine(ls.ProductID, ls.ProductName, price, ls.Quantity)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", s.ID, err)
		}
		if err := o.AddLine(line); err != nil {
			return nil, fmt.Errorf("order %s: %w", s.ID, err)
		}
	}

	state, err := stateFor(s.Status)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w: %q", s.ID, ErrInvalidStatus, s.Status)
	}
	if state.Status() == StatusPaid && len(o.lines) == 0 {
		return nil, fmt.Errorf("order %s: paid order without lines: %w", s.ID, ErrEmptyOrder)
	}
	o.state = state
	if !s.CreatedAt.IsZero() {
		o.createdAt = s.CreatedAt.UTC()
	}
	if !s.UpdatedAt.IsZero() {
		o.updatedAt = s.UpdatedAt.UTC()
	}
	return o, nil
}
