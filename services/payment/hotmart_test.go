package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func hotmartSign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHotmartConfirmPayment(t *testing.T) {
	provider := NewHotmartProvider("secret")
	body := []byte(`{"status":"approved","product_id":12,"email":"x@y.com","name":"X","transaction":"HP-1","price":99.9}`)

	event, err := provider.ConfirmPayment(body, hotmartSign("secret", body))
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if event.Provider != ProviderHotmart {
		t.Errorf("provider = %q", event.Provider)
	}
	if event.CourseID != 12 || event.ProviderID != "HP-1" || event.PayerEmail != "x@y.com" {
		t.Errorf("unexpected event %+v", event)
	}
	if event.Amount != 99.9 {
		t.Errorf("amount = %v, want 99.9", event.Amount)
	}
	if !IsSuccessStatus(event.Status) {
		t.Errorf("status %q not recognized as success", event.Status)
	}
}

func TestHotmartNestedPayloadShape(t *testing.T) {
	provider := NewHotmartProvider("secret")
	body := []byte(`{"status":"refunded","product":{"id":"44"},"buyer":{"email":"b@y.com"},"purchase":{"id":"HP-2"},"amount":10}`)

	event, err := provider.ConfirmPayment(body, hotmartSign("secret", body))
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if event.CourseID != 44 || event.ProviderID != "HP-2" || event.PayerEmail != "b@y.com" {
		t.Errorf("unexpected event %+v", event)
	}
	if IsSuccessStatus(event.Status) {
		t.Error("refunded reported as success")
	}
}

func TestHotmartBadSignature(t *testing.T) {
	provider := NewHotmartProvider("secret")
	body := []byte(`{"status":"approved","product_id":12,"email":"x@y.com","transaction":"HP-1"}`)

	cases := map[string]string{
		"empty signature": "",
		"wrong secret":    hotmartSign("other", body),
		"garbage":         "deadbeef",
	}
	for name, sig := range cases {
		if _, err := provider.ConfirmPayment(body, sig); !errors.Is(err, ErrBadSignature) {
			t.Errorf("%s: err = %v, want ErrBadSignature", name, err)
		}
	}

	// tampering with the body after signing must also fail
	tampered := append([]byte(nil), body...)
	tampered[len(tampered)-2] = '2'
	if _, err := provider.ConfirmPayment(tampered, hotmartSign("secret", body)); !errors.Is(err, ErrBadSignature) {
		t.Errorf("tampered body: err = %v, want ErrBadSignature", err)
	}
}

func TestHotmartMissingFields(t *testing.T) {
	provider := NewHotmartProvider("secret")

	cases := map[string]string{
		"no status":      `{"product_id":12,"email":"x@y.com","transaction":"HP-1"}`,
		"no product":     `{"status":"approved","email":"x@y.com","transaction":"HP-1"}`,
		"no email":       `{"status":"approved","product_id":12,"transaction":"HP-1"}`,
		"no transaction": `{"status":"approved","product_id":12,"email":"x@y.com"}`,
		"not json":       `not json at all`,
	}
	for name, payload := range cases {
		body := []byte(payload)
		if _, err := provider.ConfirmPayment(body, hotmartSign("secret", body)); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("%s: err = %v, want ErrInvalidPayload", name, err)
		}
	}
}

func TestTokenSourceCachesUntilExpiry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	defer server.Close()

	tokens := NewTokenSource(TokenSourceConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      server.URL,
	})

	for i := 0; i < 3; i++ {
		token, err := tokens.Token(context.Background())
		if err != nil {
			t.Fatalf("Token failed: %v", err)
		}
		if token != "tok-1" {
			t.Errorf("token = %q", token)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("token endpoint called %d times, want 1", got)
	}

	// invalidation forces a refetch
	tokens.Invalidate()
	if _, err := tokens.Token(context.Background()); err != nil {
		t.Fatalf("Token after Invalidate failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("token endpoint called %d times after invalidate, want 2", got)
	}
}

func TestTokenSourceShortLivedTokenRefetches(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		// expires inside the refresh margin, so it is never considered valid
		w.Write([]byte(`{"access_token":"tok-short","expires_in":30}`))
	}))
	defer server.Close()

	tokens := NewTokenSource(TokenSourceConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      server.URL,
	})

	for i := 0; i < 2; i++ {
		if _, err := tokens.Token(context.Background()); err != nil {
			t.Fatalf("Token failed: %v", err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("short-lived token fetched %d times, want 2", got)
	}
}

func TestTokenSourceMissingCredentials(t *testing.T) {
	tokens := NewTokenSource(TokenSourceConfig{})
	if _, err := tokens.Token(context.Background()); !errors.Is(err, ErrHotmartNotConfigured) {
		t.Errorf("err = %v, want ErrHotmartNotConfigured", err)
	}
}

func TestManualProviderRequiresCorrelation(t *testing.T) {
	provider := ManualProvider{}

	if _, err := provider.ConfirmPayment([]byte(`{"ProviderID":"","CourseID":1,"PayerEmail":"a@b.c"}`), ""); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("missing provider id: err = %v, want ErrInvalidPayload", err)
	}

	event, err := provider.ConfirmPayment([]byte(`{"ProviderID":"pay-1","Status":"paid","CourseID":1,"PayerEmail":"a@b.c","Amount":10}`), "")
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if event.Provider != ProviderManual {
		t.Errorf("provider = %q, want manual", event.Provider)
	}
}
