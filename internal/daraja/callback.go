package daraja

import (
	"fmt"
	"strconv"
	"time"
)

// Metadata item names used on successful result callbacks.
const (
	itemAmount          = "Amount"
	itemReceiptNumber   = "MpesaReceiptNumber"
	itemTransactionDate = "TransactionDate"
	itemPhoneNumber     = "PhoneNumber"
)

func (m *CallbackMetadata) value(name string) any {
	if m == nil {
		return nil
	}
	for _, item := range m.Item {
		if item.Name == name {
			return item.Value
		}
	}
	return nil
}

// ReceiptNumber returns the M-Pesa receipt number, or "" if absent.
func (m *CallbackMetadata) ReceiptNumber() string {
	return asString(m.value(itemReceiptNumber))
}

// Amount returns the transaction amount in KSH, or 0 if absent.
func (m *CallbackMetadata) Amount() int64 {
	return asInt64(m.value(itemAmount))
}

// PhoneNumber returns the subscriber MSISDN, or "" if absent.
func (m *CallbackMetadata) PhoneNumber() string {
	return asString(m.value(itemPhoneNumber))
}

// TransactionDate returns the completion time of the payment. Daraja sends
// it as a numeric YYYYMMDDHHmmss value in East African Time. Returns the
// zero time if absent or malformed.
func (m *CallbackMetadata) TransactionDate() time.Time {
	raw := asString(m.value(itemTransactionDate))
	if raw == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(timestampLayout, raw, nairobi())
	if err != nil {
		return time.Time{}
	}
	return t
}

// asString renders a metadata value as a string. Numeric values arrive from
// JSON as float64, so integers are formatted without an exponent.
func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func asInt64(v any) int64 {
	switch val := v.(type) {
	case float64:
		return int64(val)
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
