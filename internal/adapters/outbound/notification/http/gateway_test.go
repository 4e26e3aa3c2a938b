//go:build !integration

package http

import (
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"payrecon/internal/application/dto"

	"github.com/shopspring/decimal"
)

func testNotification() dto.RunCompletedNotification {
	return dto.RunCompletedNotification{
		RunID:           "run-1",
		Channel:         "card-gateway",
		Status:          "succeeded",
		MissingCount:    1,
		MismatchedCount: 2,
		MatchedCount:    3,
		CorrectedCount:  3,
		TotalAmount:     decimal.NewFromInt(600),
		FinishedAt:      time.Date(2026, 3, 3, 6, 5, 0, 0, time.UTC),
	}
}

func TestNotifyRunCompletedSuccess(t *testing.T) {
	const secret = "notify-secret"

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-PayRecon-Run-Id"); got != "run-1" {
			t.Fatalf("expected run id header run-1, got %s", got)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "run-1" {
			t.Fatalf("expected idempotency key run-1, got %s", got)
		}
		timestamp := strings.TrimSpace(r.Header.Get("X-PayRecon-Timestamp"))
		if timestamp == "" {
			t.Fatalf("expected timestamp header")
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("failed to read request body: %v", err)
		}
		expectedSignature := BuildExpectedSignatureHeader(secret, timestamp, body)
		if got := r.Header.Get("X-PayRecon-Signature"); got != expectedSignature {
			t.Fatalf("expected signature %s, got %s", expectedSignature, got)
		}
		if !strings.Contains(string(body), `"status":"succeeded"`) {
			t.Fatalf("unexpected body %s", body)
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}))
	defer server.Close()

	gateway := NewGateway(Config{EndpointURL: server.URL, HMACSecret: secret})

	if appErr := gateway.NotifyRunCompleted(context.Background(), testNotification()); appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
}

func TestNotifyRunCompletedNon2xxFails(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		nethttp.Error(w, "endpoint down", nethttp.StatusBadGateway)
	}))
	defer server.Close()

	gateway := NewGateway(Config{EndpointURL: server.URL, HMACSecret: "notify-secret"})

	appErr := gateway.NotifyRunCompleted(context.Background(), testNotification())
	if appErr == nil || appErr.Code != "notification_delivery_failed" {
		t.Fatalf("expected notification_delivery_failed, got %+v", appErr)
	}
}

func TestNotifyRunCompletedRequiresSecret(t *testing.T) {
	gateway := NewGateway(Config{EndpointURL: "http://localhost:0"})

	appErr := gateway.NotifyRunCompleted(context.Background(), testNotification())
	if appErr == nil || appErr.Code != "notification_hmac_secret_missing" {
		t.Fatalf("expected notification_hmac_secret_missing, got %+v", appErr)
	}
}
