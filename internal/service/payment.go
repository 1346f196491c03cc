package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/RAYMONDNJOROGE/mpesa/internal/daraja"
	"github.com/RAYMONDNJOROGE/mpesa/internal/domain"
	internalRedis "github.com/RAYMONDNJOROGE/mpesa/internal/redis"
	"github.com/RAYMONDNJOROGE/mpesa/internal/repository"
)

// STKGateway is the interface for the payment provider gateway.
type STKGateway interface {
	InitiateSTKPush(ctx context.Context, phoneNumber string, amount int64) (*daraja.STKPushResponse, error)
}

// callbackLockTTL bounds how long a retried callback delivery is suppressed.
const callbackLockTTL = 5 * time.Minute

// PaymentService handles STK Push initiation and result callbacks.
type PaymentService struct {
	txnRepo  repository.TransactionRepository
	gateway  STKGateway
	locks    internalRedis.CallbackLockInterface
	notifier *NotificationService
}

// NewPaymentService creates a new PaymentService. locks and notifier may be nil.
func NewPaymentService(txnRepo repository.TransactionRepository, gateway STKGateway, locks internalRedis.CallbackLockInterface, notifier *NotificationService) *PaymentService {
	return &PaymentService{
		txnRepo:  txnRepo,
		gateway:  gateway,
		locks:    locks,
		notifier: notifier,
	}
}

// InitiateSTKPushRequest contains the parameters for initiating an STK Push.
type InitiateSTKPushRequest struct {
	PhoneNumber string
	Amount      int64
}

// InitiateSTKPushResult is the outcome of an accepted STK Push request.
type InitiateSTKPushResult struct {
	Transaction *domain.Transaction
	// CustomerMessage is Safaricom's subscriber-facing text, when provided.
	CustomerMessage string
}

// InitiateSTKPush validates the request, asks Safaricom to push the payment
// prompt, and records a PENDING transaction when the push is accepted.
func (s *PaymentService) InitiateSTKPush(ctx context.Context, req InitiateSTKPushRequest) (*InitiateSTKPushResult, error) {
	if req.PhoneNumber == "" || req.Amount == 0 {
		return nil, ErrPhoneAndAmountRequired
	}

	if !domain.ValidSafaricomNumber(req.PhoneNumber) {
		return nil, ErrInvalidPhoneNumber
	}

	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	resp, err := s.gateway.InitiateSTKPush(ctx, req.PhoneNumber, req.Amount)
	if err != nil {
		return nil, err
	}

	if !resp.Accepted() {
		return nil, &STKPushRejectedError{
			ResponseCode: resp.ResponseCode,
			Description:  resp.ResponseDescription,
		}
	}

	txn := &domain.Transaction{
		ID:                uuid.New().String(),
		MerchantRequestID: resp.MerchantRequestID,
		CheckoutRequestID: resp.CheckoutRequestID,
		PhoneNumber:       req.PhoneNumber,
		Amount:            req.Amount,
		Status:            domain.TransactionStatusPending,
	}

	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	return &InitiateSTKPushResult{
		Transaction:     txn,
		CustomerMessage: resp.CustomerMessage,
	}, nil
}

// ProcessCallback applies the result Safaricom reports for a pending
// transaction. Duplicate deliveries of the same callback are suppressed via
// the per-checkout lock; on a processing error the lock is released so the
// handler's 500 makes Safaricom retry into a fresh attempt.
func (s *PaymentService) ProcessCallback(ctx context.Context, envelope daraja.CallbackEnvelope) error {
	cb := envelope.Body.STKCallback

	if cb.CheckoutRequestID == "" {
		return ErrCallbackMissingCheckoutID
	}

	var locked bool
	if s.locks != nil {
		acquired, err := s.locks.AcquireCallbackLock(ctx, cb.CheckoutRequestID, callbackLockTTL)
		if err != nil {
			// Redis trouble must not lose the callback; process anyway.
			log.Printf("callback lock error for %s: %v", cb.CheckoutRequestID, err)
		} else if !acquired {
			log.Printf("duplicate callback for %s, skipping", cb.CheckoutRequestID)
			return nil
		} else {
			locked = true
		}
	}

	txn, err := s.txnRepo.GetByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if err != nil {
		s.releaseLock(ctx, cb.CheckoutRequestID, locked)
		return err
	}

	result := domain.TransactionResult{
		Status:            callbackStatus(cb.ResultCode),
		ResultDescription: cb.ResultDesc,
	}

	if cb.ResultCode == 0 {
		meta := cb.CallbackMetadata
		result.MpesaReceiptNumber = meta.ReceiptNumber()
		result.TransactionDate = meta.TransactionDate()

		// Safaricom's figures are authoritative; a disagreement with our
		// record needs an operator's eyes, not a rejected callback.
		if amount := meta.Amount(); amount != 0 && amount != txn.Amount {
			log.Printf("callback amount %d does not match transaction %s amount %d", amount, txn.ID, txn.Amount)
		}
		if msisdn := meta.PhoneNumber(); msisdn != "" && msisdn != txn.PhoneNumber {
			log.Printf("callback phone %s does not match transaction %s phone %s", msisdn, txn.ID, txn.PhoneNumber)
		}
	}

	if err := s.txnRepo.UpdateResult(ctx, cb.CheckoutRequestID, result); err != nil {
		s.releaseLock(ctx, cb.CheckoutRequestID, locked)
		return err
	}

	if s.notifier != nil {
		txn.Status = result.Status
		txn.ResultDescription = result.ResultDescription
		txn.MpesaReceiptNumber = result.MpesaReceiptNumber
		txn.TransactionDate = result.TransactionDate
		s.notifier.NotifyPaymentResult(ctx, txn)
	}

	return nil
}

// releaseLock frees the dedup lock after a failed processing attempt so the
// retried delivery is not mistaken for a duplicate.
func (s *PaymentService) releaseLock(ctx context.Context, checkoutRequestID string, locked bool) {
	if !locked {
		return
	}
	if err := s.locks.ReleaseCallbackLock(ctx, checkoutRequestID); err != nil {
		log.Printf("failed to release callback lock for %s: %v", checkoutRequestID, err)
	}
}

// GetTransaction retrieves a transaction by ID.
func (s *PaymentService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	if id == "" {
		return nil, ErrInvalidTransactionID
	}

	return s.txnRepo.GetByID(ctx, id)
}

// callbackStatus maps a Daraja result code to a transaction status.
func callbackStatus(resultCode int) domain.TransactionStatus {
	switch resultCode {
	case 0:
		return domain.TransactionStatusSuccess
	case daraja.ResultCodeCancelled:
		return domain.TransactionStatusCancelled
	default:
		return domain.TransactionStatusFailed
	}
}
