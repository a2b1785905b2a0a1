package handler

import "github.com/shopspring/decimal"

// PaymentRequest represents the request body for processing a payment
type PaymentRequest struct {
	TaskID            string          `json:"taskId"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	ExternalReference string          `json:"externalReference"`
}

// TransactionResponse represents the finalized transaction returned to the
// client
type TransactionResponse struct {
	ID                string          `json:"id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	Type              string          `json:"type"`
	TaskID            string          `json:"taskId"`
	ExternalReference string          `json:"externalReference"`
	CreatedAt         string          `json:"createdAt"`
}

// TaskRequest represents the request body for creating or updating a task
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TaskResponse represents a task returned to the client
type TaskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
