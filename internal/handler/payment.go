package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RAYMONDNJOROGE/mpesa/internal/daraja"
	"github.com/RAYMONDNJOROGE/mpesa/internal/service"
)

// PaymentHandler handles HTTP requests for STK Push payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// STKPushRequest is the HTTP request body for initiating an STK Push.
// Field names match what the payment form submits.
type STKPushRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Amount      int64  `json:"amount"`
}

// STKPushResponse is the HTTP response for STK Push initiation. The
// submission client treats the success flag as authoritative on 2xx replies
// and reads message on every outcome.
type STKPushResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	CheckoutRequestID string `json:"CheckoutRequestID,omitempty"`
}

// TransactionResponse is the HTTP response for transaction lookups.
type TransactionResponse struct {
	ID                 string `json:"id"`
	CheckoutRequestID  string `json:"checkout_request_id"`
	PhoneNumber        string `json:"phone_number"`
	Amount             int64  `json:"amount"`
	Status             string `json:"status"`
	ResultDescription  string `json:"result_description,omitempty"`
	MpesaReceiptNumber string `json:"mpesa_receipt_number,omitempty"`
}

// InitiateSTKPush handles POST /api/stkpush
func (h *PaymentHandler) InitiateSTKPush(c *gin.Context) {
	var req STKPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, STKPushResponse{Success: false, Message: "invalid request body"})
		return
	}

	result, err := h.paymentService.InitiateSTKPush(c.Request.Context(), service.InitiateSTKPushRequest{
		PhoneNumber: req.PhoneNumber,
		Amount:      req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	message := result.CustomerMessage
	if message == "" {
		message = "STK Push initiated successfully! Check your phone for the M-Pesa prompt."
	}

	respondJSON(c, http.StatusOK, STKPushResponse{
		Success:           true,
		Message:           message,
		CheckoutRequestID: result.Transaction.CheckoutRequestID,
	})
}

// callbackAck is the acknowledgement body Safaricom expects. A non-zero
// ResultCode tells Safaricom to retry the delivery.
type callbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// MpesaCallback handles POST /api/mpesa_callback
func (h *PaymentHandler) MpesaCallback(c *gin.Context) {
	var envelope daraja.CallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, callbackAck{ResultCode: 1, ResultDesc: "invalid callback body"})
		return
	}

	if err := h.paymentService.ProcessCallback(c.Request.Context(), envelope); err != nil {
		log.Printf("failed to process mpesa callback: %v", err)
		c.JSON(http.StatusInternalServerError, callbackAck{ResultCode: 1, ResultDesc: "failed to process callback"})
		return
	}

	respondJSON(c, http.StatusOK, callbackAck{ResultCode: 0, ResultDesc: "Callback received successfully"})
}

// GetTransaction handles GET /api/transactions/:id
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	txn, err := h.paymentService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, TransactionResponse{
		ID:                 txn.ID,
		CheckoutRequestID:  txn.CheckoutRequestID,
		PhoneNumber:        txn.PhoneNumber,
		Amount:             txn.Amount,
		Status:             string(txn.Status),
		ResultDescription:  txn.ResultDescription,
		MpesaReceiptNumber: txn.MpesaReceiptNumber,
	})
}
