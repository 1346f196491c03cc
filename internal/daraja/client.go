package daraja

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/RAYMONDNJOROGE/mpesa/internal/config"
	internalRedis "github.com/RAYMONDNJOROGE/mpesa/internal/redis"
)

// tokenTTLSlack is subtracted from the token lifetime before caching so a
// cached token is never handed out moments before it expires.
const tokenTTLSlack = 60 * time.Second

// APIError is a non-2xx reply from the Daraja API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("daraja: %s (code %s, status %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("daraja: HTTP status %d", e.StatusCode)
}

// Client talks to the Safaricom Daraja API: OAuth token acquisition and
// STK Push initiation.
type Client struct {
	http   *resty.Client
	cfg    config.MpesaConfig
	tokens internalRedis.TokenCacheInterface
	now    func() time.Time
}

// NewClient creates a new Daraja client. tokens may be nil, in which case a
// fresh OAuth token is fetched for every request.
func NewClient(cfg config.MpesaConfig, tokens internalRedis.TokenCacheInterface) *Client {
	return &Client{
		http:   resty.New(),
		cfg:    cfg,
		tokens: tokens,
		now:    time.Now,
	}
}

// AccessToken returns a valid OAuth access token, from cache when possible.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.tokens != nil {
		token, err := c.tokens.GetToken(ctx)
		if err != nil {
			// Cache trouble is not fatal; fetch a fresh token.
			log.Printf("token cache read failed: %v", err)
		} else if token != "" {
			return token, nil
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret).
		Get(c.cfg.OAuthURL)
	if err != nil {
		return "", fmt.Errorf("failed to request access token: %w", err)
	}

	if resp.IsError() {
		return "", c.apiError(resp)
	}

	var auth authResponse
	if err := json.Unmarshal(resp.Body(), &auth); err != nil {
		return "", fmt.Errorf("failed to decode access token response: %w", err)
	}
	if auth.AccessToken == "" {
		return "", fmt.Errorf("access token missing from response")
	}

	if c.tokens != nil {
		ttl := tokenTTL(auth.ExpiresIn)
		if err := c.tokens.SetToken(ctx, auth.AccessToken, ttl); err != nil {
			log.Printf("token cache write failed: %v", err)
		}
	}

	return auth.AccessToken, nil
}

// InitiateSTKPush sends one STK Push request for the given subscriber and
// amount. The returned response carries Safaricom's synchronous verdict;
// ResponseCode "0" means the prompt was pushed to the subscriber's phone.
func (c *Client) InitiateSTKPush(ctx context.Context, phoneNumber string, amount int64) (*STKPushResponse, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	shortCode, err := strconv.ParseInt(c.cfg.ShortCode, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid business short code %q: %w", c.cfg.ShortCode, err)
	}

	msisdn, err := strconv.ParseInt(phoneNumber, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid phone number %q: %w", phoneNumber, err)
	}

	timestamp, password := Credentials(c.cfg.ShortCode, c.cfg.Passkey, c.now())

	payload := STKPushRequest{
		BusinessShortCode: shortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   c.cfg.TransactionType,
		Amount:            amount,
		PartyA:            msisdn,
		PartyB:            shortCode,
		PhoneNumber:       msisdn,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  c.cfg.AccountReference,
		TransactionDesc:   c.cfg.TransactionDesc,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.cfg.STKPushURL)
	if err != nil {
		return nil, fmt.Errorf("stk push request failed: %w", err)
	}

	if resp.IsError() {
		return nil, c.apiError(resp)
	}

	var pushResp STKPushResponse
	if err := json.Unmarshal(resp.Body(), &pushResp); err != nil {
		return nil, fmt.Errorf("failed to decode stk push response: %w", err)
	}

	return &pushResp, nil
}

// apiError converts a non-2xx resty response into an *APIError.
func (c *Client) apiError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}

	var body apiError
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		apiErr.Code = body.ErrorCode
		apiErr.Message = body.ErrorMessage
	}

	return apiErr
}

// tokenTTL converts Daraja's expires_in string (seconds) into a cache TTL.
func tokenTTL(expiresIn string) time.Duration {
	seconds, err := strconv.Atoi(expiresIn)
	if err != nil || seconds <= 0 {
		// Daraja tokens last 3599 seconds; assume that when the field is odd.
		seconds = 3599
	}
	ttl := time.Duration(seconds)*time.Second - tokenTTLSlack
	if ttl <= 0 {
		ttl = time.Duration(seconds) * time.Second
	}
	return ttl
}
