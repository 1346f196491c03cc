package service

import (
	"errors"
	"fmt"
)

var (
	// ErrPhoneAndAmountRequired is returned when either required field is missing.
	ErrPhoneAndAmountRequired = errors.New("phone number and amount are required")

	// ErrInvalidPhoneNumber is returned when the phone number is not a valid
	// Safaricom MSISDN (2547/2541 followed by 8 digits).
	ErrInvalidPhoneNumber = errors.New("invalid Kenyan Safaricom phone number format, must be 2547/2541XXXXXXXX")

	// ErrInvalidAmount is returned when the amount is not a positive integer.
	ErrInvalidAmount = errors.New("amount must be a positive integer")

	// ErrInvalidTransactionID is returned when a transaction ID is empty.
	ErrInvalidTransactionID = errors.New("invalid transaction id")

	// ErrCallbackMissingCheckoutID is returned when a result callback carries
	// no CheckoutRequestID.
	ErrCallbackMissingCheckoutID = errors.New("callback missing checkout request id")
)

// STKPushRejectedError is returned when Safaricom receives the STK Push
// request but declines to initiate it.
type STKPushRejectedError struct {
	ResponseCode string
	Description  string
}

func (e *STKPushRejectedError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return fmt.Sprintf("stk push rejected with response code %s", e.ResponseCode)
}
