// Package service internal/application/service/payment_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
	"github.com/arnoldphilip/task-payment-system/internal/domain/repository"
	domain "github.com/arnoldphilip/task-payment-system/internal/domain/service"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/logger"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = time.Second
)

// PaymentService drives a payment through its full lifecycle: duplicate
// check, task resolution, pending insert, external settlement, status
// finalization and task status propagation.
type PaymentService struct {
	txRepo       repository.TransactionRepository
	taskRepo     repository.TaskRepository
	gateway      domain.PaymentGateway
	maxAttempts  int
	retryBackoff time.Duration
	logger       logger.Logger
}

// NewPaymentService creates a new payment service. maxAttempts and
// retryBackoff govern retries on gateway unavailability; zero values get
// defaults.
func NewPaymentService(txRepo repository.TransactionRepository, taskRepo repository.TaskRepository, gw domain.PaymentGateway, maxAttempts int, retryBackoff time.Duration, log logger.Logger) *PaymentService {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &PaymentService{
		txRepo:       txRepo,
		taskRepo:     taskRepo,
		gateway:      gw,
		maxAttempts:  maxAttempts,
		retryBackoff: retryBackoff,
		logger:       log,
	}
}

// ProcessPayment executes a single payment attempt against a task.
//
// A gateway decline is a successful execution with a FAILED outcome: the
// transaction is finalized and the task cancelled. Gateway unavailability
// leaves the transaction PENDING for reconciliation and surfaces
// ErrGatewayUnavailable; nothing is cached upstream, so the caller may
// retry under the same idempotency key without creating a second
// transaction (the reference guard holds).
func (s *PaymentService) ProcessPayment(ctx context.Context, taskID string, amount decimal.Decimal, currency, externalReference string) (*entity.Transaction, error) {
	requestID := middleware.GetRequestID(ctx)

	s.logger.Info("Starting payment process", map[string]interface{}{
		"request_id":         requestID,
		"task_id":            taskID,
		"external_reference": externalReference,
	})

	// Fast-path duplicate check. The atomic unique insert below is the
	// actual correctness guarantee; this only avoids a pointless task fetch.
	if _, err := s.txRepo.FindByReference(ctx, externalReference); err == nil {
		s.logger.Warn("Duplicate external reference", map[string]interface{}{
			"request_id":         requestID,
			"external_reference": externalReference,
		})
		return nil, fmt.Errorf("reference %q: %w", externalReference, repository.ErrDuplicateReference)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Task not found", map[string]interface{}{
				"request_id": requestID,
				"task_id":    taskID,
			})
			return nil, fmt.Errorf("task %q: %w", taskID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve task: %w", err)
	}

	tx := &entity.Transaction{
		ID:                uuid.New().String(),
		Amount:            amount,
		Currency:          currency,
		Status:            entity.StatusPending,
		Type:              entity.TypeDebit,
		TaskID:            task.ID,
		ExternalReference: externalReference,
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	// The pending row is the durable record of intent; it survives a
	// gateway failure or a crash before finalization.
	if err := s.txRepo.Insert(ctx, tx); err != nil {
		if errors.Is(err, repository.ErrDuplicateReference) {
			s.logger.Warn("Lost insert race on external reference", map[string]interface{}{
				"request_id":         requestID,
				"external_reference": externalReference,
			})
			return nil, fmt.Errorf("reference %q: %w", externalReference, repository.ErrDuplicateReference)
		}
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	result, err := s.settle(ctx, externalReference)
	if err != nil {
		s.logger.Warn("Settlement did not complete, transaction left pending", map[string]interface{}{
			"request_id":         requestID,
			"transaction_id":     tx.ID,
			"external_reference": externalReference,
			"error":              err.Error(),
		})
		return nil, err
	}

	finalized, err := s.txRepo.UpdateStatus(ctx, tx.ID, result)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize transaction %s: %w", tx.ID, err)
	}

	// Best-effort propagation: the terminal transaction status is already
	// durable and authoritative. A failure here leaves the task to
	// out-of-band reconciliation.
	taskStatus := entity.TaskCompleted
	if result == entity.StatusFailed {
		taskStatus = entity.TaskCancelled
	}

	if err := s.taskRepo.SetStatus(ctx, task.ID, taskStatus); err != nil {
		s.logger.Error("Failed to propagate payment outcome to task", map[string]interface{}{
			"request_id":     requestID,
			"transaction_id": finalized.ID,
			"task_id":        task.ID,
			"task_status":    string(taskStatus),
			"error":          err.Error(),
		})
	} else {
		s.logger.Info("Task status updated", map[string]interface{}{
			"request_id":  requestID,
			"task_id":     task.ID,
			"task_status": string(taskStatus),
		})
	}

	s.logger.Info("Payment process completed", map[string]interface{}{
		"request_id":         requestID,
		"transaction_id":     finalized.ID,
		"status":             string(finalized.Status),
		"external_reference": externalReference,
	})

	return finalized, nil
}

// settle invokes the gateway, retrying on unavailability with the same
// quadratic backoff used for other flaky upstreams. If the caller goes away
// mid-call, the in-flight provider call is allowed to finish and its result
// is discarded: the real-world payment may have gone through, so only
// reconciliation may decide the outcome.
func (s *PaymentService) settle(ctx context.Context, externalReference string) (entity.TransactionStatus, error) {
	type outcome struct {
		status entity.TransactionStatus
		err    error
	}

	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		ch := make(chan outcome, 1)
		go func() {
			status, err := s.gateway.Settle(ctx, externalReference)
			ch <- outcome{status: status, err: err}
		}()

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: caller cancelled while settling: %v", domain.ErrGatewayUnavailable, ctx.Err())
		case res := <-ch:
			if res.err == nil {
				return res.status, nil
			}
			if !errors.Is(res.err, domain.ErrGatewayUnavailable) {
				return "", res.err
			}
			lastErr = res.err
		}

		if attempt < s.maxAttempts {
			backoff := time.Duration(attempt*attempt) * s.retryBackoff
			s.logger.Warn("Gateway unavailable, retrying", map[string]interface{}{
				"external_reference": externalReference,
				"attempt":            attempt,
				"max_attempts":       s.maxAttempts,
				"backoff":            backoff.String(),
			})

			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: caller cancelled during backoff: %v", domain.ErrGatewayUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
		}
	}

	return "", fmt.Errorf("settlement failed after %d attempts: %w", s.maxAttempts, lastErr)
}
