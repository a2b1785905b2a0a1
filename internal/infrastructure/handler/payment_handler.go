package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/arnoldphilip/task-payment-system/internal/application/service"
	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
	"github.com/arnoldphilip/task-payment-system/internal/domain/repository"
	domain "github.com/arnoldphilip/task-payment-system/internal/domain/service"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/logger"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// PaymentHandler handles HTTP requests for payments
type PaymentHandler struct {
	service  *service.PaymentService
	idemRepo repository.IdempotencyRepository
	logger   logger.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *service.PaymentService, idemRepo repository.IdempotencyRepository, log logger.Logger) *PaymentHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &PaymentHandler{
		service:  service,
		idemRepo: idemRepo,
		logger:   log,
	}
}

// ProcessPayment handles the execution of a payment against a task
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	h.logger.Info("Handling process payment request", map[string]interface{}{
		"request_id": requestID,
		"method":     r.Method,
		"path":       r.URL.Path,
	})

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	if req.TaskID == "" {
		sendErrorResponse(w, h.logger, "Missing task id",
			"The 'taskId' field is required", http.StatusBadRequest, requestID)
		return
	}

	if req.ExternalReference == "" {
		sendErrorResponse(w, h.logger, "Missing external reference",
			"The 'externalReference' field is required", http.StatusBadRequest, requestID)
		return
	}

	if !req.Amount.IsPositive() {
		h.logger.Warn("Invalid amount", map[string]interface{}{
			"request_id": requestID,
			"amount":     req.Amount.String(),
		})
		sendErrorResponse(w, h.logger, "Invalid amount",
			"Amount must be a positive value", http.StatusBadRequest, requestID)
		return
	}

	// Currency codes should be 3 characters
	if len(req.Currency) != 3 {
		h.logger.Warn("Invalid currency code", map[string]interface{}{
			"request_id": requestID,
			"currency":   req.Currency,
		})
		sendErrorResponse(w, h.logger, "Invalid currency code",
			"Currency code should be 3 characters (e.g., USD, EUR, GBP)", http.StatusBadRequest, requestID)
		return
	}

	tx, err := h.service.ProcessPayment(r.Context(), req.TaskID, req.Amount, req.Currency, req.ExternalReference)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateReference):
			sendErrorResponse(w, h.logger, "Duplicate external reference",
				"A transaction with this external reference already exists",
				http.StatusUnprocessableEntity, requestID)
		case errors.Is(err, repository.ErrNotFound):
			sendErrorResponse(w, h.logger, "Task not found",
				"The referenced task could not be found", http.StatusNotFound, requestID)
		case errors.Is(err, domain.ErrGatewayUnavailable):
			h.logger.Error("Payment gateway unavailable", map[string]interface{}{
				"request_id":         requestID,
				"external_reference": req.ExternalReference,
				"error":              err.Error(),
			})
			sendErrorResponse(w, h.logger, "Payment provider unavailable",
				"The payment could not be settled. The attempt was recorded and may be retried with the same idempotency key.",
				http.StatusServiceUnavailable, requestID)
		default:
			h.logger.Error("Unexpected error in process payment", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Internal server error",
				"An unexpected error occurred while processing the payment",
				http.StatusInternalServerError, requestID)
		}
		return
	}

	h.logger.Info("Payment processed", map[string]interface{}{
		"request_id":     requestID,
		"transaction_id": tx.ID,
		"status":         string(tx.Status),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newTransactionResponse(tx))
}

// ListIdempotencyRecords lists all cached idempotency records (diagnostic)
func (h *PaymentHandler) ListIdempotencyRecords(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	records, err := h.idemRepo.FindAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list idempotency records", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while listing idempotency records",
			http.StatusInternalServerError, requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// RegisterRoutes registers the payment handler routes
func (h *PaymentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/payments", h.ProcessPayment).Methods("POST")
	router.HandleFunc("/payments/idempotency", h.ListIdempotencyRecords).Methods("GET")

	h.logger.Info("Payment routes registered", map[string]interface{}{
		"routes": []string{
			"POST /payments",
			"GET /payments/idempotency",
		},
	})
}

func newTransactionResponse(tx *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                tx.ID,
		Amount:            tx.Amount,
		Currency:          tx.Currency,
		Status:            string(tx.Status),
		Type:              string(tx.Type),
		TaskID:            tx.TaskID,
		ExternalReference: tx.ExternalReference,
		CreatedAt:         tx.CreatedAt.Format(time.RFC3339Nano),
	}
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}

	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	json.NewEncoder(w).Encode(resp)
}
