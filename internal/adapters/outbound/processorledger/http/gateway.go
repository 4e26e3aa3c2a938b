package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	portsout "payrecon/internal/application/ports/out"
	"payrecon/internal/domain/entities"
	apperrors "payrecon/internal/shared_kernel/errors"

	"github.com/shopspring/decimal"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultPageSize    = 500
	maxErrorBodyBytes  = 1024
	// tokenExpirySkew renews the session slightly before the processor
	// would reject it, so an in-flight page fetch never races expiry.
	tokenExpirySkew = 30 * time.Second
)

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	PageSize     int
	Timeout      time.Duration
}

// Gateway reads the processor's settlement ledger over its HTTP API. The
// processor is the authoritative side of every reconciliation.
type Gateway struct {
	baseURL      string
	clientID     string
	clientSecret string
	pageSize     int
	client       *nethttp.Client

	mu      sync.Mutex
	session session
}

// session is an authenticated processor token with its expiry instant.
type session struct {
	Token     string
	ExpiresAt time.Time
}

func (s session) usable(now time.Time) bool {
	return s.Token != "" && now.Add(tokenExpirySkew).Before(s.ExpiresAt)
}

var _ portsout.ProcessorLedgerGateway = (*Gateway)(nil)

func NewGateway(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Gateway{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		clientID:     strings.TrimSpace(cfg.ClientID),
		clientSecret: strings.TrimSpace(cfg.ClientSecret),
		pageSize:     pageSize,
		client: &nethttp.Client{
			Timeout: timeout,
		},
	}
}

func (g *Gateway) FetchTransactions(
	ctx context.Context,
	channel string,
	windowStart time.Time,
	windowEnd time.Time,
) ([]entities.TransactionRecord, *apperrors.AppError) {
	if g == nil || g.client == nil {
		return nil, apperrors.NewInternal(
			"processor_gateway_not_configured",
			"processor ledger gateway is not configured",
			nil,
		)
	}
	if g.baseURL == "" {
		return nil, apperrors.NewInternal(
			"processor_base_url_missing",
			"processor base url is missing",
			nil,
		)
	}

	records := make([]entities.TransactionRecord, 0, g.pageSize)
	for page := 1; ; page++ {
		token, appErr := g.sessionToken(ctx)
		if appErr != nil {
			return nil, appErr
		}

		pageRecords, hasMore, appErr := g.fetchPage(ctx, token, channel, windowStart, windowEnd, page)
		if appErr != nil {
			return nil, appErr
		}

		records = append(records, pageRecords...)
		if !hasMore {
			break
		}
	}

	return records, nil
}

// sessionToken reuses the cached token while it is still comfortably inside
// its lifetime and re-authenticates otherwise.
func (g *Gateway) sessionToken(ctx context.Context) (string, *apperrors.AppError) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC()
	if g.session.usable(now) {
		return g.session.Token, nil
	}

	refreshed, appErr := g.authenticate(ctx)
	if appErr != nil {
		return "", appErr
	}

	g.session = refreshed
	return g.session.Token, nil
}

func (g *Gateway) authenticate(ctx context.Context) (session, *apperrors.AppError) {
	if g.clientID == "" || g.clientSecret == "" {
		return session{}, apperrors.NewInternal(
			"processor_credentials_missing",
			"processor client credentials are missing",
			nil,
		)
	}

	body, err := json.Marshal(map[string]string{
		"client_id":     g.clientID,
		"client_secret": g.clientSecret,
	})
	if err != nil {
		return session{}, apperrors.NewInternal(
			"processor_auth_failed",
			"failed to encode authentication request",
			map[string]any{"error": err.Error()},
		)
	}

	request, err := nethttp.NewRequestWithContext(
		ctx,
		nethttp.MethodPost,
		g.baseURL+"/v1/auth/token",
		bytes.NewReader(body),
	)
	if err != nil {
		return session{}, apperrors.NewInternal(
			"processor_auth_failed",
			"failed to build authentication request",
			map[string]any{"error": err.Error()},
		)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := g.client.Do(request)
	if err != nil {
		return session{}, apperrors.NewInternal(
			"processor_auth_failed",
			"failed to reach processor authentication endpoint",
			map[string]any{"error": err.Error()},
		)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return session{}, apperrors.NewInternal(
			"processor_auth_failed",
			"processor authentication returned non-2xx status",
			map[string]any{
				"status_code": response.StatusCode,
				"body":        bodyPreview(response.Body),
			},
		)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return session{}, apperrors.NewInternal(
			"processor_auth_failed",
			"failed to decode authentication response",
			map[string]any{"error": err.Error()},
		)
	}
	if strings.TrimSpace(payload.AccessToken) == "" || payload.ExpiresIn <= 0 {
		return session{}, apperrors.NewInternal(
			"processor_auth_failed",
			"processor authentication response is incomplete",
			nil,
		)
	}

	return session{
		Token:     strings.TrimSpace(payload.AccessToken),
		ExpiresAt: time.Now().UTC().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}, nil
}

func (g *Gateway) fetchPage(
	ctx context.Context,
	token string,
	channel string,
	windowStart time.Time,
	windowEnd time.Time,
	page int,
) ([]entities.TransactionRecord, bool, *apperrors.AppError) {
	query := url.Values{}
	query.Set("channel", strings.TrimSpace(channel))
	query.Set("start", windowStart.UTC().Format(time.RFC3339))
	query.Set("end", windowEnd.UTC().Format(time.RFC3339))
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("page_size", fmt.Sprintf("%d", g.pageSize))

	request, err := nethttp.NewRequestWithContext(
		ctx,
		nethttp.MethodGet,
		g.baseURL+"/v1/transactions?"+query.Encode(),
		nil,
	)
	if err != nil {
		return nil, false, apperrors.NewInternal(
			"processor_fetch_failed",
			"failed to build transaction fetch request",
			map[string]any{"error": err.Error()},
		)
	}
	request.Header.Set("Authorization", "Bearer "+token)
	request.Header.Set("Accept", "application/json")

	response, err := g.client.Do(request)
	if err != nil {
		return nil, false, apperrors.NewInternal(
			"processor_fetch_failed",
			"failed to reach processor ledger endpoint",
			map[string]any{"error": err.Error(), "page": page},
		)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, false, apperrors.NewInternal(
			"processor_fetch_failed",
			"processor ledger returned non-2xx status",
			map[string]any{
				"status_code": response.StatusCode,
				"body":        bodyPreview(response.Body),
				"page":        page,
			},
		)
	}

	var payload struct {
		Transactions []processorTransaction `json:"transactions"`
		HasMore      bool                   `json:"has_more"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, false, apperrors.NewInternal(
			"processor_fetch_failed",
			"failed to decode processor ledger response",
			map[string]any{"error": err.Error(), "page": page},
		)
	}

	records := make([]entities.TransactionRecord, 0, len(payload.Transactions))
	for _, raw := range payload.Transactions {
		record, appErr := raw.toRecord(channel)
		if appErr != nil {
			return nil, false, appErr
		}

		records = append(records, record)
	}

	return records, payload.HasMore, nil
}

// processorTransaction accepts both field spellings the processor has
// shipped over time: current snake_case and the legacy camelCase the older
// ledger export still uses.
type processorTransaction struct {
	TransactionID          string `json:"transaction_id"`
	LegacyTransactionID    string `json:"transactionId"`
	Amount                 string `json:"amount"`
	Currency               string `json:"currency"`
	Status                 string `json:"status"`
	PaymentMethod          string `json:"payment_method"`
	LegacyPaymentMethod    string `json:"paymentMethod"`
	Installments           int    `json:"installments"`
	TransactionDate        string `json:"transaction_date"`
	LegacyTransactionDate  string `json:"transactionDate"`
	ExpectedSettlementDate string `json:"expected_settlement_date"`
	LegacySettlementDate   string `json:"expectedSettlementDate"`
	SettlementBatchID      string `json:"settlement_batch_id"`
	LegacySettlementBatch  string `json:"settlementBatchId"`
}

func (p processorTransaction) toRecord(channel string) (entities.TransactionRecord, *apperrors.AppError) {
	transactionID := firstNonEmpty(p.TransactionID, p.LegacyTransactionID)

	amount, err := decimal.NewFromString(strings.TrimSpace(p.Amount))
	if err != nil {
		return entities.TransactionRecord{}, apperrors.NewInternal(
			"processor_payload_invalid",
			"processor transaction amount is not a valid decimal",
			map[string]any{"error": err.Error(), "transaction_id": transactionID},
		)
	}

	transactionDate, appErr := parseProcessorTime(
		firstNonEmpty(p.TransactionDate, p.LegacyTransactionDate),
		transactionID,
	)
	if appErr != nil {
		return entities.TransactionRecord{}, appErr
	}

	input := entities.NewTransactionRecordInput{
		TransactionID:   transactionID,
		Channel:         channel,
		Amount:          amount,
		Currency:        p.Currency,
		Status:          p.Status,
		PaymentMethod:   firstNonEmpty(p.PaymentMethod, p.LegacyPaymentMethod),
		Installments:    p.Installments,
		TransactionDate: transactionDate,
	}

	if raw := firstNonEmpty(p.ExpectedSettlementDate, p.LegacySettlementDate); raw != "" {
		settlement, appErr := parseProcessorTime(raw, transactionID)
		if appErr != nil {
			return entities.TransactionRecord{}, appErr
		}
		input.ExpectedSettlementDate = &settlement
	}
	if batchID := firstNonEmpty(p.SettlementBatchID, p.LegacySettlementBatch); batchID != "" {
		input.SettlementBatchID = &batchID
	}

	return entities.NewTransactionRecord(input)
}

func parseProcessorTime(raw string, transactionID string) (time.Time, *apperrors.AppError) {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperrors.NewInternal(
			"processor_payload_invalid",
			"processor transaction timestamp is not valid RFC3339",
			map[string]any{"error": err.Error(), "transaction_id": transactionID},
		)
	}

	return parsed.UTC(), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}

	return ""
}

func bodyPreview(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(raw))
}
