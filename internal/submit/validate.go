package submit

import (
	"strconv"
	"strings"

	"github.com/RAYMONDNJOROGE/mpesa/internal/domain"
)

// Validation failure reasons.
const (
	ReasonMissingField  = "missing-field"
	ReasonInvalidPhone  = "invalid-phone"
	ReasonInvalidAmount = "invalid-amount"
)

// ValidationError is a local, recoverable input failure. It never reaches
// the network layer.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Reason + ": " + e.Message
}

var (
	errMissingField = &ValidationError{
		Reason:  ReasonMissingField,
		Message: "Please enter both a phone number and an amount.",
	}
	errInvalidPhone = &ValidationError{
		Reason:  ReasonInvalidPhone,
		Message: "Please enter a valid Safaricom number in the format 2547XXXXXXXX or 2541XXXXXXXX.",
	}
	errInvalidAmount = &ValidationError{
		Reason:  ReasonInvalidAmount,
		Message: "Please enter a whole amount in KSH greater than zero.",
	}
)

// Input is one validated submission attempt, built from raw field text.
type Input struct {
	PhoneNumber string
	Amount      int64
}

// validate applies the checks in order; the first failure wins.
// Amounts must be strictly integer-formatted: fractional text such as
// "10.9" is rejected rather than truncated.
func validate(rawPhone, rawAmount string) (Input, *ValidationError) {
	phone := strings.TrimSpace(rawPhone)
	amountText := strings.TrimSpace(rawAmount)

	if phone == "" || amountText == "" {
		return Input{}, errMissingField
	}

	if !domain.ValidSafaricomNumber(phone) {
		return Input{}, errInvalidPhone
	}

	amount, err := strconv.ParseInt(amountText, 10, 64)
	if err != nil || amount <= 0 {
		return Input{}, errInvalidAmount
	}

	return Input{PhoneNumber: phone, Amount: amount}, nil
}
