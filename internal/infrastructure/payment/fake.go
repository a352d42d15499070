package payment

import (
	"context"
	"sync"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/money"
)

// FakeGateway is an in-memory payment.Gateway for tests. It records the last
// amount charged per order and can be told to decline everything.
type FakeGateway struct {
	mu         sync.Mutex
	shouldFail bool
	err        error
	attempts   int
	charges    map[string]money.Money
}

func NewFakeGateway(shouldFail bool) *FakeGateway {
	return &FakeGateway{
		shouldFail: shouldFail,
		charges:    make(map[string]money.Money),
	}
}

func (g *FakeGateway) Charge(ctx context.Context, orderID string, amount money.Money) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.attempts++
	if g.err != nil {
		return false, g.err
	}
	if g.shouldFail {
		return false, nil
	}
	g.charges[orderID] = amount
	return true, nil
}

// SetShouldFail switches declining on or off.
func (g *FakeGateway) SetShouldFail(fail bool) {
	g.mu.Lock()
	g.shouldFail = fail
	g.mu.Unlock()
}

// SetError makes every Charge return err, simulating a transport failure.
func (g *FakeGateway) SetError(err error) {
	g.mu.Lock()
	g.err = err
	g.mu.Unlock()
}

// Charged returns the last successful charge recorded for orderID.
func (g *FakeGateway) Charged(orderID string) (money.Money, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.charges[orderID]
	return m, ok
}

// Attempts counts Charge calls, successful or not.
func (g *FakeGateway) Attempts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts
}

func (g *FakeGateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempts = 0
	g.charges = make(map[string]money.Money)
}
