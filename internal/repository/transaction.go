package repository

import (
	"context"

	"github.com/RAYMONDNJOROGE/mpesa/internal/domain"
)

// TransactionRepository defines the persistence operations for STK Push transactions.
type TransactionRepository interface {
	// Create persists a new transaction.
	Create(ctx context.Context, txn *domain.Transaction) error

	// GetByID retrieves a transaction by ID.
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)

	// GetByCheckoutRequestID retrieves a transaction by its Daraja CheckoutRequestID.
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Transaction, error)

	// UpdateResult records the outcome reported by the M-Pesa result callback.
	UpdateResult(ctx context.Context, checkoutRequestID string, result domain.TransactionResult) error
}
