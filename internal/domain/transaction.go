package domain

import "time"

// TransactionStatus represents the current status of an STK Push transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusSuccess   TransactionStatus = "SUCCESS"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction represents one STK Push payment attempt, from initiation
// through the M-Pesa result callback.
type Transaction struct {
	ID                 string
	MerchantRequestID  string
	CheckoutRequestID  string
	PhoneNumber        string
	Amount             int64
	Status             TransactionStatus
	ResultDescription  string
	MpesaReceiptNumber string
	TransactionDate    time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TransactionResult is the terminal outcome reported by the M-Pesa result
// callback for a pending transaction.
type TransactionResult struct {
	Status             TransactionStatus
	ResultDescription  string
	MpesaReceiptNumber string
	TransactionDate    time.Time
}
