package gateway

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
	"github.com/arnoldphilip/task-payment-system/internal/domain/service"
	"github.com/stretchr/testify/assert"
)

func TestSimulatedGatewayOutcomes(t *testing.T) {
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))

	t.Run("Always succeeds at rate 1", func(t *testing.T) {
		gw := NewSimulatedGateway(0, 1.0, 0, rnd, nil)

		for i := 0; i < 20; i++ {
			status, err := gw.Settle(ctx, "ref-1")
			assert.NoError(t, err)
			assert.Equal(t, entity.StatusSuccess, status)
		}
	})

	t.Run("Always fails at rate 0", func(t *testing.T) {
		gw := NewSimulatedGateway(0, 0, 0, rnd, nil)

		for i := 0; i < 20; i++ {
			status, err := gw.Settle(ctx, "ref-1")
			assert.NoError(t, err)
			assert.Equal(t, entity.StatusFailed, status)
		}
	})

	t.Run("Always unavailable at rate 1", func(t *testing.T) {
		gw := NewSimulatedGateway(0, 1.0, 1.0, rnd, nil)

		_, err := gw.Settle(ctx, "ref-1")
		assert.ErrorIs(t, err, service.ErrGatewayUnavailable)
	})
}

func TestSimulatedGatewayLatency(t *testing.T) {
	gw := NewSimulatedGateway(30*time.Millisecond, 1.0, 0, rand.New(rand.NewSource(1)), nil)

	start := time.Now()
	_, err := gw.Settle(context.Background(), "ref-1")

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
