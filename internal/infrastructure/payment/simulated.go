package payment

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/money"
)

const defaultSuccessRate = 0.9

// SimulatedGateway approves charges at random with a configurable success rate.
// It stands in for a real processor in the demo binary.
type SimulatedGateway struct {
	mu          sync.Mutex
	random      *rand.Rand
	successRate float64
	latency     time.Duration
}

func NewSimulatedGateway(successRate float64) *SimulatedGateway {
	g := &SimulatedGateway{
		random:      rand.New(rand.NewSource(time.Now().UnixNano())),
		successRate: defaultSuccessRate,
	}
	g.SetSuccessRate(successRate)
	return g
}

// WithSeed makes the outcome sequence reproducible.
func (g *SimulatedGateway) WithSeed(seed int64) *SimulatedGateway {
	g.mu.Lock()
	g.random = rand.New(rand.NewSource(seed))
	g.mu.Unlock()
	return g
}

// WithLatency delays every charge by d, honouring context cancellation.
func (g *SimulatedGateway) WithLatency(d time.Duration) *SimulatedGateway {
	g.mu.Lock()
	g.latency = d
	g.mu.Unlock()
	return g
}

func (g *SimulatedGateway) Charge(ctx context.Context, orderID string, amount money.Money) (bool, error) {
	if orderID == "" {
		return false, errors.New("payment: order id is required")
	}

	g.mu.Lock()
	latency := g.latency
	g.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.random.Float64() < g.successRate, nil
}

// SetSuccessRate clamps rate into [0, 1].
func (g *SimulatedGateway) SetSuccessRate(rate float64) {
	g.mu.Lock()
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	g.successRate = rate
	g.mu.Unlock()
}

func (g *SimulatedGateway) SuccessRate() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.successRate
}
