package submit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// recordingPresenter captures every view the controller renders.
type recordingPresenter struct {
	mu    sync.Mutex
	views []View
}

func (p *recordingPresenter) Present(v View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, v)
}

func (p *recordingPresenter) last() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.views) == 0 {
		return View{}
	}
	return p.views[len(p.views)-1]
}

func (p *recordingPresenter) all() []View {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]View, len(p.views))
	copy(out, p.views)
	return out
}

// backend is a scripted collaborator endpoint.
type backend struct {
	status   int
	body     string
	requests int32
	lastBody string
	mu       sync.Mutex
}

func (b *backend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.requests, 1)
		raw, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.lastBody = string(raw)
		status, body := b.status, b.body
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (b *backend) setReply(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
	b.body = body
}

func (b *backend) requestCount() int32 {
	return atomic.LoadInt32(&b.requests)
}

func (b *backend) lastRequestBody() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastBody
}

func validationReason(t *testing.T, err error) string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return verr.Reason
}

func TestSubmit_InvalidPhone(t *testing.T) {
	testCases := []struct {
		name  string
		phone string
	}{
		{"no country code", "0712345678"},
		{"wrong prefix", "254212345678"},
		{"too short", "25471234567"},
		{"too long", "2547123456789"},
		{"non-digit characters", "2547abcd5678"},
		{"leading plus", "+25471234567"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			be := &backend{status: 200, body: `{"success":true}`}
			srv := httptest.NewServer(be.handler())
			defer srv.Close()

			controller := NewController(srv.URL, nil)
			_, err := controller.Submit(context.Background(), tc.phone, "100")

			if reason := validationReason(t, err); reason != ReasonInvalidPhone {
				t.Errorf("expected reason %q, got %q", ReasonInvalidPhone, reason)
			}
			if be.requestCount() != 0 {
				t.Errorf("expected no request, got %d", be.requestCount())
			}
		})
	}
}

func TestSubmit_InvalidAmount(t *testing.T) {
	testCases := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-5"},
		{"non-numeric", "abc"},
		{"fractional rejected, not truncated", "10.9"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			be := &backend{status: 200, body: `{"success":true}`}
			srv := httptest.NewServer(be.handler())
			defer srv.Close()

			controller := NewController(srv.URL, nil)
			_, err := controller.Submit(context.Background(), "254712345678", tc.amount)

			if reason := validationReason(t, err); reason != ReasonInvalidAmount {
				t.Errorf("expected reason %q, got %q", ReasonInvalidAmount, reason)
			}
			if be.requestCount() != 0 {
				t.Errorf("expected no request, got %d", be.requestCount())
			}
		})
	}
}

func TestSubmit_MissingFieldWinsOverLaterChecks(t *testing.T) {
	testCases := []struct {
		name   string
		phone  string
		amount string
	}{
		{"empty phone", "", "100"},
		{"whitespace phone with bad amount", "   ", "abc"},
		{"empty amount with bad phone", "0712345678", ""},
		{"both empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			be := &backend{status: 200, body: `{"success":true}`}
			srv := httptest.NewServer(be.handler())
			defer srv.Close()

			controller := NewController(srv.URL, nil)
			_, err := controller.Submit(context.Background(), tc.phone, tc.amount)

			if reason := validationReason(t, err); reason != ReasonMissingField {
				t.Errorf("expected reason %q, got %q", ReasonMissingField, reason)
			}
			if be.requestCount() != 0 {
				t.Errorf("expected no request, got %d", be.requestCount())
			}
		})
	}
}

func TestSubmit_ValidationIsIdempotent(t *testing.T) {
	be := &backend{status: 200, body: `{"success":true}`}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()

	controller := NewController(srv.URL, nil)

	_, err1 := controller.Submit(context.Background(), "0712345678", "100")
	_, err2 := controller.Submit(context.Background(), "0712345678", "100")

	r1 := validationReason(t, err1)
	r2 := validationReason(t, err2)
	if r1 != r2 {
		t.Errorf("expected identical reasons, got %q then %q", r1, r2)
	}
	if be.requestCount() != 0 {
		t.Errorf("expected no requests, got %d", be.requestCount())
	}
}

func TestSubmit_SuccessWithDefaultMessage(t *testing.T) {
	be := &backend{status: 200, body: `{"success":true}`}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()

	presenter := &recordingPresenter{}
	controller := NewController(srv.URL, presenter)

	outcome, err := controller.Submit(context.Background(), "254712345678", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !outcome.Success {
		t.Error("expected success outcome")
	}
	if outcome.Message != DefaultSuccessMessage {
		t.Errorf("expected default success message, got %q", outcome.Message)
	}

	want := `{"phoneNumber":"254712345678","amount":100}`
	if got := be.lastRequestBody(); got != want {
		t.Errorf("expected request body %s, got %s", want, got)
	}

	final := presenter.last()
	if !final.TriggerEnabled {
		t.Error("expected trigger re-enabled after submission")
	}
	if final.TriggerLabel != DefaultTriggerLabel {
		t.Errorf("expected label %q, got %q", DefaultTriggerLabel, final.TriggerLabel)
	}
	if final.Category != CategorySuccess {
		t.Errorf("expected success category, got %q", final.Category)
	}
	if controller.State() != StateReady {
		t.Errorf("expected ready state, got %q", controller.State())
	}
}

func TestSubmit_TrimsInputs(t *testing.T) {
	be := &backend{status: 200, body: `{"success":true}`}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()

	controller := NewController(srv.URL, nil)
	outcome, err := controller.Submit(context.Background(), "  254712345678 ", " 100\t")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Success {
		t.Error("expected success outcome")
	}

	want := `{"phoneNumber":"254712345678","amount":100}`
	if got := be.lastRequestBody(); got != want {
		t.Errorf("expected request body %s, got %s", want, got)
	}
}

func TestSubmit_BackendErrorUsesBodyMessage(t *testing.T) {
	be := &backend{status: 500, body: `{"message":"provider timeout"}`}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()

	controller := NewController(srv.URL, nil)
	outcome, err := controller.Submit(context.Background(), "254712345678", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Success {
		t.Error("expected failure outcome")
	}
	if outcome.Message != "provider timeout" {
		t.Errorf("expected body message, got %q", outcome.Message)
	}
}

func TestSubmit_BackendErrorWithoutMessageFallsBack(t *testing.T) {
	be := &backend{status: 503, body: `oops`}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()

	controller := NewController(srv.URL, nil)
	outcome, err := controller.Submit(context.Background(), "254712345678", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Success {
		t.Error("expected failure outcome")
	}
	if outcome.Message != "Backend error: HTTP Status 503" {
		t.Errorf("unexpected message %q", outcome.Message)
	}
}

func TestSubmit_LogicalFailureDefaultMessage(t *testing.T) {
	be := &backend{status: 200, body: `{"success":false}`}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()

	presenter := &recordingPresenter{}
	controller := NewController(srv.URL, presenter)

	outcome, err := controller.Submit(context.Background(), "254712345678", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Success {
		t.Error("expected failure outcome")
	}
	if outcome.Message != DefaultFailureMessage {
		t.Errorf("expected default failure message, got %q", outcome.Message)
	}
	if presenter.last().Category != CategoryFailure {
		t.Errorf("expected failure category, got %q", presenter.last().Category)
	}
}

func TestSubmit_LogicalFailureBodyMessage(t *testing.T) {
	be := &backend{status: 200, body: `{"success":false,"message":"Insufficient funds"}`}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()

	controller := NewController(srv.URL, nil)
	outcome, err := controller.Submit(context.Background(), "254712345678", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Message != "Insufficient funds" {
		t.Errorf("expected body message, got %q", outcome.Message)
	}
}

func TestSubmit_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // Connection refused from here on.

	presenter := &recordingPresenter{}
	controller := NewController(url, presenter)

	outcome, err := controller.Submit(context.Background(), "254712345678", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Success {
		t.Error("expected failure outcome")
	}
	if !strings.HasPrefix(outcome.Message, "An error occurred: ") ||
		!strings.HasSuffix(outcome.Message, ". Please try again.") {
		t.Errorf("unexpected transport failure message %q", outcome.Message)
	}

	// The controller must recover to ready even on transport failure.
	if controller.State() != StateReady {
		t.Errorf("expected ready state, got %q", controller.State())
	}
	if !presenter.last().TriggerEnabled {
		t.Error("expected trigger re-enabled")
	}
}

func TestSubmit_MalformedSuccessBody(t *testing.T) {
	be := &backend{status: 200, body: `not json`}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()

	controller := NewController(srv.URL, nil)
	outcome, err := controller.Submit(context.Background(), "254712345678", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Success {
		t.Error("expected failure outcome")
	}
	if !strings.HasPrefix(outcome.Message, "An error occurred: ") {
		t.Errorf("unexpected message %q", outcome.Message)
	}
}

func TestSubmit_GuardRejectsOverlappingCall(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	controller := NewController(srv.URL, nil)

	done := make(chan Outcome, 1)
	go func() {
		out, _ := controller.Submit(context.Background(), "254712345678", "100")
		done <- out
	}()

	<-entered
	_, err := controller.Submit(context.Background(), "254712345678", "100")
	if !errors.Is(err, ErrSubmissionInFlight) {
		t.Errorf("expected ErrSubmissionInFlight, got %v", err)
	}

	close(release)
	out := <-done
	if !out.Success {
		t.Error("expected first submission to succeed")
	}
}

func TestSubmit_StateSequence(t *testing.T) {
	be := &backend{status: 200, body: `{"success":true}`}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()

	presenter := &recordingPresenter{}
	controller := NewController(srv.URL, presenter)

	if _, err := controller.Submit(context.Background(), "254712345678", "100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	views := presenter.all()
	// Initial ready render, clear, pending, terminal.
	if len(views) != 4 {
		t.Fatalf("expected 4 views, got %d: %+v", len(views), views)
	}

	cleared := views[1]
	if cleared.Message != "" || !cleared.TriggerEnabled {
		t.Errorf("expected cleared ready view, got %+v", cleared)
	}

	pending := views[2]
	if pending.TriggerEnabled {
		t.Error("expected trigger disabled while pending")
	}
	if pending.TriggerLabel != ProcessingTriggerLabel {
		t.Errorf("expected processing label, got %q", pending.TriggerLabel)
	}
	if pending.Category != CategoryNeutral {
		t.Errorf("expected neutral category while pending, got %q", pending.Category)
	}

	terminal := views[3]
	if !terminal.TriggerEnabled || terminal.TriggerLabel != DefaultTriggerLabel {
		t.Errorf("expected restored trigger, got %+v", terminal)
	}
}

func TestSubmit_ReadyForNextAttemptAfterFailure(t *testing.T) {
	be := &backend{status: 500, body: `{"message":"provider timeout"}`}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()

	controller := NewController(srv.URL, nil)

	if _, err := controller.Submit(context.Background(), "254712345678", "100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	be.setReply(200, `{"success":true}`)

	outcome, err := controller.Submit(context.Background(), "254712345678", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Success {
		t.Error("expected second attempt to succeed")
	}
	if be.requestCount() != 2 {
		t.Errorf("expected 2 requests, got %d", be.requestCount())
	}
}
