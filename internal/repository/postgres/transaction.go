package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/RAYMONDNJOROGE/mpesa/internal/domain"
	"github.com/RAYMONDNJOROGE/mpesa/internal/repository"
)

// TransactionRepository is a PostgreSQL implementation of repository.TransactionRepository.
type TransactionRepository struct {
	q Querier
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{q: db}
}

// NewTransactionRepositoryWithTx creates a transaction repository using a database transaction.
func NewTransactionRepositoryWithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Create persists a new transaction.
func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO mpesa_transactions
			(id, merchant_request_id, checkout_request_id, phone_number, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`

	_, err := r.q.ExecContext(ctx, query,
		txn.ID,
		txn.MerchantRequestID,
		txn.CheckoutRequestID,
		txn.PhoneNumber,
		txn.Amount,
		txn.Status,
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := selectTransaction + ` WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByCheckoutRequestID retrieves a transaction by its Daraja CheckoutRequestID.
func (r *TransactionRepository) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Transaction, error) {
	query := selectTransaction + ` WHERE checkout_request_id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, checkoutRequestID))
}

// UpdateResult records the outcome reported by the M-Pesa result callback.
func (r *TransactionRepository) UpdateResult(ctx context.Context, checkoutRequestID string, result domain.TransactionResult) error {
	query := `
		UPDATE mpesa_transactions
		SET status = $1,
			result_description = $2,
			mpesa_receipt_number = $3,
			transaction_date = $4,
			updated_at = NOW()
		WHERE checkout_request_id = $5
	`

	res, err := r.q.ExecContext(ctx, query,
		result.Status,
		result.ResultDescription,
		nullString(result.MpesaReceiptNumber),
		nullTime(result.TransactionDate),
		checkoutRequestID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

const selectTransaction = `
	SELECT id, merchant_request_id, checkout_request_id, phone_number, amount,
		status, result_description, mpesa_receipt_number, transaction_date,
		created_at, updated_at
	FROM mpesa_transactions
`

func (r *TransactionRepository) scanOne(row *sql.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	var resultDesc, receipt sql.NullString
	var txnDate sql.NullTime

	err := row.Scan(
		&txn.ID,
		&txn.MerchantRequestID,
		&txn.CheckoutRequestID,
		&txn.PhoneNumber,
		&txn.Amount,
		&txn.Status,
		&resultDesc,
		&receipt,
		&txnDate,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	txn.ResultDescription = resultDesc.String
	txn.MpesaReceiptNumber = receipt.String
	txn.TransactionDate = txnDate.Time

	return &txn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
