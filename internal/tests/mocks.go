package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RAYMONDNJOROGE/mpesa/internal/daraja"
	"github.com/RAYMONDNJOROGE/mpesa/internal/domain"
	"github.com/RAYMONDNJOROGE/mpesa/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRANSACTION REPOSITORY
// ──────────────────────────────────────────────

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction // keyed by CheckoutRequestID

	// Counters for verification
	CreateCallCount       int32
	UpdateResultCallCount int32

	// Error injection
	CreateError       error
	UpdateResultError error
}

// NewMockTransactionRepository creates a new mock transaction repository.
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

// AddTransaction adds a transaction to the mock repository.
func (m *MockTransactionRepository) AddTransaction(txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.CheckoutRequestID] = txn
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.CheckoutRequestID] = txn
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.transactions {
		if txn.ID == id {
			copy := *txn
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockTransactionRepository) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txn, ok := m.transactions[checkoutRequestID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *txn
	return &copy, nil
}

func (m *MockTransactionRepository) UpdateResult(ctx context.Context, checkoutRequestID string, result domain.TransactionResult) error {
	atomic.AddInt32(&m.UpdateResultCallCount, 1)
	if m.UpdateResultError != nil {
		return m.UpdateResultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[checkoutRequestID]
	if !ok {
		return repository.ErrNotFound
	}
	txn.Status = result.Status
	txn.ResultDescription = result.ResultDescription
	txn.MpesaReceiptNumber = result.MpesaReceiptNumber
	txn.TransactionDate = result.TransactionDate
	return nil
}

// GetTransaction returns a transaction for test assertions.
func (m *MockTransactionRepository) GetTransaction(checkoutRequestID string) *domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transactions[checkoutRequestID]
}

// ──────────────────────────────────────────────
// MOCK STK GATEWAY
// ──────────────────────────────────────────────

// MockSTKGateway is a mock implementation of service.STKGateway.
type MockSTKGateway struct {
	mu sync.Mutex

	// Response scripting
	Response *daraja.STKPushResponse
	Err      error

	// Captured arguments for verification
	CallCount       int32
	LastPhoneNumber string
	LastAmount      int64
}

// NewMockSTKGateway creates a gateway that accepts every request.
func NewMockSTKGateway() *MockSTKGateway {
	return &MockSTKGateway{
		Response: &daraja.STKPushResponse{
			MerchantRequestID:   "merchant-1",
			CheckoutRequestID:   "checkout-1",
			ResponseCode:        "0",
			ResponseDescription: "Success. Request accepted for processing",
		},
	}
}

func (m *MockSTKGateway) InitiateSTKPush(ctx context.Context, phoneNumber string, amount int64) (*daraja.STKPushResponse, error) {
	atomic.AddInt32(&m.CallCount, 1)
	m.mu.Lock()
	m.LastPhoneNumber = phoneNumber
	m.LastAmount = amount
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

// ──────────────────────────────────────────────
// MOCK CALLBACK LOCK
// ──────────────────────────────────────────────

// MockCallbackLock is a mock implementation of CallbackLockInterface.
type MockCallbackLock struct {
	mu   sync.Mutex
	held map[string]bool

	// When Denied is true every acquire fails, simulating a duplicate delivery.
	Denied bool
}

// NewMockCallbackLock creates a new mock callback lock.
func NewMockCallbackLock() *MockCallbackLock {
	return &MockCallbackLock{held: make(map[string]bool)}
}

func (m *MockCallbackLock) AcquireCallbackLock(ctx context.Context, checkoutRequestID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Denied || m.held[checkoutRequestID] {
		return false, nil
	}
	m.held[checkoutRequestID] = true
	return true, nil
}

func (m *MockCallbackLock) ReleaseCallbackLock(ctx context.Context, checkoutRequestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, checkoutRequestID)
	return nil
}
