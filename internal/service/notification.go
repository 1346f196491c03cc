package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/RAYMONDNJOROGE/mpesa/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationPaymentSuccess   NotificationType = "PAYMENT_SUCCESS"
	NotificationPaymentFailed    NotificationType = "PAYMENT_FAILED"
	NotificationPaymentCancelled NotificationType = "PAYMENT_CANCELLED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type      NotificationType
	Recipient string // Subscriber MSISDN
	Title     string
	Message   string
	CreatedAt time.Time
}

// NotificationService handles notification delivery.
type NotificationService struct {
	// In a real system, this would have an SMS client (e.g. Africa's Talking)
	// and an email client.
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyPaymentResult notifies the subscriber about the final state of a payment.
func (s *NotificationService) NotifyPaymentResult(ctx context.Context, txn *domain.Transaction) {
	var n Notification

	switch txn.Status {
	case domain.TransactionStatusSuccess:
		n = Notification{
			Type:      NotificationPaymentSuccess,
			Recipient: txn.PhoneNumber,
			Title:     "Payment Received",
			Message:   fmt.Sprintf("Payment of KSH %d received. Receipt: %s", txn.Amount, txn.MpesaReceiptNumber),
		}
	case domain.TransactionStatusCancelled:
		n = Notification{
			Type:      NotificationPaymentCancelled,
			Recipient: txn.PhoneNumber,
			Title:     "Payment Cancelled",
			Message:   "You cancelled the M-Pesa prompt. No money was deducted.",
		}
	default:
		n = Notification{
			Type:      NotificationPaymentFailed,
			Recipient: txn.PhoneNumber,
			Title:     "Payment Failed",
			Message:   fmt.Sprintf("Payment of KSH %d failed: %s", txn.Amount, txn.ResultDescription),
		}
	}
	n.CreatedAt = time.Now()

	s.send(ctx, n)
}

// send delivers a notification (mock implementation).
func (s *NotificationService) send(ctx context.Context, n Notification) {
	// A real implementation would hand this to an SMS or push provider.
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		n.Type, n.Recipient, n.Title, n.Message)
}
