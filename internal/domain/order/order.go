package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/money"
)

type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, err := stateFor(status); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// Order is the aggregate root. All mutation goes through its methods so the
// lifecycle rules in state.go always hold.
type Order struct {
	id         string
	customerID string
	lines      []Line
	state      State
	createdAt  time.Time
	updatedAt  time.Time
}

func New(id, customerID string) (*Order, error) {
	id = strings.TrimSpace(id)
	customerID = strings.TrimSpace(customerID)
	if id == "" {
		return nil, ErrInvalidID
	}
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", ErrValidation)
	}

	now := time.Now().UTC()
	return &Order{
		id:         id,
		customerID: customerID,
		state:      createdState{},
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func (o *Order) ID() string           { return o.id }
func (o *Order) CustomerID() string   { return o.customerID }
func (o *Order) Status() Status       { return o.state.Status() }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// Lines returns a copy of the lines in insertion order.
func (o *Order) Lines() []Line {
	return append([]Line(nil), o.lines...)
}

// Currency is the currency shared by all lines, or money.DefaultCurrency when empty.
func (o *Order) Currency() string {
	if len(o.lines) == 0 {
		return money.DefaultCurrency
	}
	return o.lines[0].UnitPrice().Currency()
}

func (o *Order) AddLine(line Line) error {
	if err := o.state.OnModify(o); err != nil {
		return err
	}
	if line.ProductID() == "" {
		return fmt.Errorf("%w: line is empty", ErrValidation)
	}
	for _, existing := range o.lines {
		if existing.ProductID() == line.ProductID() {
			return fmt.Errorf("%w: %s", ErrDuplicateProduct, line.ProductID())
		}
	}
	if len(o.lines) > 0 && line.UnitPrice().Currency() != o.Currency() {
		return fmt.Errorf("%w: got %s, order is in %s", ErrCurrencyMismatch, line.UnitPrice().Currency(), o.Currency())
	}

	o.lines = append(o.lines, line)
	o.touch()
	return nil
}

func (o *Order) RemoveLine(productID string) error {
	if err := o.state.OnModify(o); err != nil {
		return err
	}
	for i, existing := range o.lines {
		if existing.ProductID() == productID {
			o.lines = append(o.lines[:i:i], o.lines[i+1:]...)
			o.touch()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrLineNotFound, productID)
}

// Pay marks the order as paid. It only changes in-memory state; charging and
// persisting are the caller's job.
func (o *Order) Pay() error {
	next, err := o.state.OnPay(o)
	if err != nil {
		return err
	}
	o.state = next
	o.touch()
	return nil
}

func (o *Order) Cancel() error {
	next, err := o.state.OnCancel(o)
	if err != nil {
		return err
	}
	if next.Status() != o.state.Status() {
		o.state = next
		o.touch()
	}
	return nil
}

// TotalAmount sums the line totals. An empty order totals zero in the default currency.
func (o *Order) TotalAmount() money.Money {
	total, _ := money.Zero(o.Currency())
	for _, l := range o.lines {
		// every line shares the order currency, enforced by AddLine and Rehydrate.
		total, _ = total.Add(l.Total())
	}
	return total
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.lines = o.Lines()
	return &clone
}

func (o *Order) touch() {
	o.updatedAt = time.Now().UTC()
}
