package service

import (
	"context"
	"errors"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
)

// ErrGatewayUnavailable is returned when the provider could not be reached
// or did not answer. It is distinct from a declined payment: a declined
// payment is a successful settlement call with a FAILED outcome.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// PaymentGateway defines the interface for the external payment provider.
// Settle blocks until the provider reports an outcome for the reference.
type PaymentGateway interface {
	// Settle executes the payment identified by the external reference and
	// returns StatusSuccess or StatusFailed, or ErrGatewayUnavailable.
	Settle(ctx context.Context, externalReference string) (entity.TransactionStatus, error)
}
