package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"payrecon/internal/application/dto"
	portsout "payrecon/internal/application/ports/out"
	apperrors "payrecon/internal/shared_kernel/errors"
)

const (
	defaultHTTPTimeout = 5 * time.Second
	maxErrorBodyBytes  = 1024
)

type Config struct {
	EndpointURL string
	HMACSecret  string
	Timeout     time.Duration
}

// Gateway delivers run-completed events to the operator's endpoint. Each
// request carries an HMAC-SHA256 signature over timestamp and body so the
// receiver can verify origin and freshness.
type Gateway struct {
	endpointURL string
	hmacSecret  string
	client      *nethttp.Client
}

var _ portsout.RunNotificationGateway = (*Gateway)(nil)

func NewGateway(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &Gateway{
		endpointURL: strings.TrimSpace(cfg.EndpointURL),
		hmacSecret:  strings.TrimSpace(cfg.HMACSecret),
		client: &nethttp.Client{
			Timeout: timeout,
		},
	}
}

func (g *Gateway) NotifyRunCompleted(
	ctx context.Context,
	notification dto.RunCompletedNotification,
) *apperrors.AppError {
	if g == nil || g.client == nil {
		return apperrors.NewInternal(
			"notification_gateway_not_configured",
			"notification gateway is not configured",
			nil,
		)
	}
	if g.endpointURL == "" {
		return apperrors.NewInternal(
			"notification_endpoint_missing",
			"notification endpoint url is missing",
			nil,
		)
	}
	if g.hmacSecret == "" {
		return apperrors.NewInternal(
			"notification_hmac_secret_missing",
			"notification hmac secret is missing",
			nil,
		)
	}
	runID := strings.TrimSpace(notification.RunID)
	if runID == "" {
		return apperrors.NewValidation(
			"notification_run_id_missing",
			"notification run id is required",
			nil,
		)
	}

	body, err := json.Marshal(notification)
	if err != nil {
		return apperrors.NewInternal(
			"notification_encode_failed",
			"failed to encode run completed notification",
			map[string]any{"error": err.Error(), "run_id": runID},
		)
	}

	timestamp := strconv.FormatInt(time.Now().UTC().Unix(), 10)
	signature := notificationSignature(g.hmacSecret, timestamp, body)

	request, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, g.endpointURL, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewInternal(
			"notification_request_build_failed",
			"failed to build notification request",
			map[string]any{"error": err.Error()},
		)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-PayRecon-Run-Id", runID)
	request.Header.Set("Idempotency-Key", runID)
	request.Header.Set("X-PayRecon-Timestamp", timestamp)
	request.Header.Set("X-PayRecon-Signature", "sha256="+signature)

	response, err := g.client.Do(request)
	if err != nil {
		return apperrors.NewInternal(
			"notification_delivery_failed",
			"failed to send run completed notification",
			map[string]any{"error": err.Error(), "run_id": runID},
		)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		bodyPreview := ""
		raw, readErr := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))
		if readErr == nil {
			bodyPreview = strings.TrimSpace(string(raw))
		}
		return apperrors.NewInternal(
			"notification_delivery_failed",
			"notification endpoint returned non-2xx status",
			map[string]any{
				"status_code": response.StatusCode,
				"body":        bodyPreview,
				"run_id":      runID,
			},
		)
	}

	return nil
}

func notificationSignature(secret string, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(timestamp))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func BuildExpectedSignatureHeader(secret string, timestamp string, body []byte) string {
	return fmt.Sprintf("sha256=%s", notificationSignature(secret, timestamp, body))
}
