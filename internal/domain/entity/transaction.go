package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the settlement state of a payment transaction
type TransactionStatus string

const (
	// StatusPending marks a transaction created but not yet settled
	StatusPending TransactionStatus = "PENDING"
	// StatusSuccess marks a transaction settled successfully (terminal)
	StatusSuccess TransactionStatus = "SUCCESS"
	// StatusFailed marks a transaction declined by the provider (terminal)
	StatusFailed TransactionStatus = "FAILED"
)

// IsTerminal reports whether no further status transition is permitted
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// TransactionType distinguishes debits from credits
type TransactionType string

const (
	// TypeDebit is a charge against the task owner
	TypeDebit TransactionType = "DEBIT"
	// TypeCredit is a payout; not produced by the current flow
	TypeCredit TransactionType = "CREDIT"
)

// Transaction represents a single payment attempt against a task
type Transaction struct {
	ID                string            `json:"id"`
	Amount            decimal.Decimal   `json:"amount"`
	Currency          string            `json:"currency"`
	Status            TransactionStatus `json:"status"`
	Type              TransactionType   `json:"type"`
	TaskID            string            `json:"taskId"`
	ExternalReference string            `json:"externalReference"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// Validate ensures the transaction meets all requirements
func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return errors.New("amount must be a positive value")
	}

	if len(t.Currency) != 3 {
		return errors.New("currency must be a 3-letter code")
	}

	if t.ExternalReference == "" {
		return errors.New("external reference is required")
	}

	if t.TaskID == "" {
		return errors.New("task id is required")
	}

	return nil
}
