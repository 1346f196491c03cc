package daraja

// authResponse is the body of a successful OAuth token request.
type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// STKPushRequest is the payload for the Daraja STK Push (Lipa na M-Pesa
// Online) endpoint. Field names and casing are dictated by the API.
type STKPushRequest struct {
	BusinessShortCode int64  `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            int64  `json:"PartyA"`
	PartyB            int64  `json:"PartyB"`
	PhoneNumber       int64  `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// STKPushResponse is the synchronous reply to an STK Push request.
// ResponseCode "0" means Safaricom accepted the request; the actual payment
// outcome arrives later on the result callback.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// Accepted reports whether Safaricom accepted the STK Push request.
func (r *STKPushResponse) Accepted() bool {
	return r.ResponseCode == "0"
}

// apiError is the error body Daraja returns on non-2xx responses.
type apiError struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// CallbackEnvelope is the body Safaricom POSTs to the result callback URL.
type CallbackEnvelope struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

// STKCallback carries the final result of one STK Push attempt.
// ResultCode 0 is success; 1032 is "request cancelled by user".
type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// ResultCodeCancelled is the Daraja result code for a prompt the
// subscriber dismissed.
const ResultCodeCancelled = 1032

// CallbackMetadata holds the transaction details present on successful callbacks.
type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

// CallbackItem is one name/value pair inside CallbackMetadata.
type CallbackItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value,omitempty"`
}
