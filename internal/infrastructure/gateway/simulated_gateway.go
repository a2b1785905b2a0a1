package gateway

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
	"github.com/arnoldphilip/task-payment-system/internal/domain/service"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/logger"
)

// SimulatedGateway stands in for a third-party payment rail. It sleeps for a
// configurable latency and then reports a probabilistic outcome. Swapping in
// a real integration only requires another implementation of
// service.PaymentGateway; the workflow is unaffected.
//
// The latency sleep deliberately ignores the context: a real provider call
// that is already on the wire cannot be un-sent. Caller cancellation is
// handled above the gateway, where the in-flight result is discarded.
type SimulatedGateway struct {
	latency         time.Duration
	successRate     float64
	unavailableRate float64
	logger          logger.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulatedGateway creates a simulated payment gateway. A nil rnd gets a
// time-seeded source; tests pass a seeded one to force outcomes.
func NewSimulatedGateway(latency time.Duration, successRate, unavailableRate float64, rnd *rand.Rand, log logger.Logger) *SimulatedGateway {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &SimulatedGateway{
		latency:         latency,
		successRate:     successRate,
		unavailableRate: unavailableRate,
		logger:          log,
		rnd:             rnd,
	}
}

// Settle executes the payment identified by the external reference
func (g *SimulatedGateway) Settle(ctx context.Context, externalReference string) (entity.TransactionStatus, error) {
	g.logger.Info("Processing external payment", map[string]interface{}{
		"external_reference": externalReference,
	})

	if g.latency > 0 {
		time.Sleep(g.latency)
	}

	if g.roll() < g.unavailableRate {
		g.logger.Warn("External payment provider unavailable", map[string]interface{}{
			"external_reference": externalReference,
		})
		return "", service.ErrGatewayUnavailable
	}

	if g.roll() >= g.successRate {
		g.logger.Error("External payment failed", map[string]interface{}{
			"external_reference": externalReference,
		})
		return entity.StatusFailed, nil
	}

	g.logger.Info("External payment successful", map[string]interface{}{
		"external_reference": externalReference,
	})
	return entity.StatusSuccess, nil
}

// roll draws from the shared rand source; rand.Rand is not safe for
// concurrent use.
func (g *SimulatedGateway) roll() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64()
}
