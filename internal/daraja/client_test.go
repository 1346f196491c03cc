package daraja

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RAYMONDNJOROGE/mpesa/internal/config"
)

// memoryTokenCache is an in-memory stand-in for the Redis token store.
type memoryTokenCache struct {
	mu       sync.Mutex
	token    string
	ttl      time.Duration
	setCalls int
}

func (c *memoryTokenCache) GetToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

func (c *memoryTokenCache) SetToken(ctx context.Context, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.ttl = ttl
	c.setCalls++
	return nil
}

func testConfig(baseURL string) config.MpesaConfig {
	return config.MpesaConfig{
		ConsumerKey:      "key",
		ConsumerSecret:   "secret",
		Passkey:          "passkey",
		ShortCode:        "174379",
		CallbackURL:      "https://example.com/api/mpesa_callback",
		OAuthURL:         baseURL + "/oauth/v1/generate",
		STKPushURL:       baseURL + "/mpesa/stkpush/v1/processrequest",
		TransactionType:  "CustomerPayBillOnline",
		AccountReference: "Payment",
		TransactionDesc:  "STK Push payment",
	}
}

func TestAccessToken_FetchesAndCaches(t *testing.T) {
	var authCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&authCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			t.Errorf("unexpected basic auth: %s:%s", user, pass)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token-1","expires_in":"3599"}`))
	}))
	defer srv.Close()

	cache := &memoryTokenCache{}
	client := NewClient(testConfig(srv.URL), cache)

	token, err := client.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "token-1" {
		t.Errorf("expected token-1, got %s", token)
	}

	// Second call must come from the cache.
	if _, err := client.AccessToken(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&authCalls); got != 1 {
		t.Errorf("expected 1 auth request, got %d", got)
	}

	// TTL is the token lifetime minus slack.
	want := 3599*time.Second - tokenTTLSlack
	if cache.ttl != want {
		t.Errorf("expected ttl %v, got %v", want, cache.ttl)
	}
}

func TestAccessToken_MissingTokenInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)
	if _, err := client.AccessToken(context.Background()); err == nil {
		t.Error("expected error for missing access token")
	}
}

func TestInitiateSTKPush_SendsDarajaPayload(t *testing.T) {
	var gotPayload STKPushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/oauth/v1/generate":
			_, _ = w.Write([]byte(`{"access_token":"token-1","expires_in":"3599"}`))
		case "/mpesa/stkpush/v1/processrequest":
			if auth := r.Header.Get("Authorization"); auth != "Bearer token-1" {
				t.Errorf("unexpected authorization header %q", auth)
			}
			if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
				t.Errorf("failed to decode payload: %v", err)
			}
			_, _ = w.Write([]byte(`{
				"MerchantRequestID":"29115-34620561-1",
				"CheckoutRequestID":"ws_CO_191220191020363925",
				"ResponseCode":"0",
				"ResponseDescription":"Success. Request accepted for processing",
				"CustomerMessage":"Success. Request accepted for processing"
			}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)
	resp, err := client.InitiateSTKPush(context.Background(), "254712345678", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.Accepted() {
		t.Error("expected accepted response")
	}
	if resp.CheckoutRequestID != "ws_CO_191220191020363925" {
		t.Errorf("unexpected checkout request id %s", resp.CheckoutRequestID)
	}

	if gotPayload.BusinessShortCode != 174379 {
		t.Errorf("expected short code 174379, got %d", gotPayload.BusinessShortCode)
	}
	if gotPayload.PartyA != 254712345678 || gotPayload.PhoneNumber != 254712345678 {
		t.Errorf("expected subscriber 254712345678, got PartyA=%d PhoneNumber=%d", gotPayload.PartyA, gotPayload.PhoneNumber)
	}
	if gotPayload.PartyB != 174379 {
		t.Errorf("expected PartyB 174379, got %d", gotPayload.PartyB)
	}
	if gotPayload.Amount != 100 {
		t.Errorf("expected amount 100, got %d", gotPayload.Amount)
	}
	if gotPayload.TransactionType != "CustomerPayBillOnline" {
		t.Errorf("unexpected transaction type %s", gotPayload.TransactionType)
	}
	if gotPayload.CallBackURL != "https://example.com/api/mpesa_callback" {
		t.Errorf("unexpected callback url %s", gotPayload.CallBackURL)
	}
	if gotPayload.Password == "" || len(gotPayload.Timestamp) != 14 {
		t.Errorf("expected derived credentials, got password=%q timestamp=%q", gotPayload.Password, gotPayload.Timestamp)
	}
}

func TestInitiateSTKPush_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/oauth/v1/generate" {
			_, _ = w.Write([]byte(`{"access_token":"token-1","expires_in":"3599"}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"requestId":"1","errorCode":"500.001.1001","errorMessage":"Invalid Amount"}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)
	_, err := client.InitiateSTKPush(context.Background(), "254712345678", 100)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Invalid Amount" {
		t.Errorf("expected message from body, got %q", apiErr.Message)
	}
}
