package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProviderStatus is the payment state as reported by the provider
type ProviderStatus string

const (
	ProviderStatusPending    ProviderStatus = "pending"
	ProviderStatusProcessing ProviderStatus = "processing"
	ProviderStatusSucceeded  ProviderStatus = "succeeded"
	ProviderStatusFailed     ProviderStatus = "failed"
	ProviderStatusCancelled  ProviderStatus = "cancelled"

	// ProviderStatusExpired means the customer never paid and the provider
	// closed the payment window. Treated as a failure on our side.
	ProviderStatusExpired ProviderStatus = "expired"
)

var (
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	ErrProviderRejected    = errors.New("payment provider rejected the request")
	ErrTransactionNotFound = errors.New("provider transaction not found")
)

// CreatePaymentRequest is what we send to the provider
type CreatePaymentRequest struct {
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	WebhookURL  string  `json:"webhook_url"`
	RedirectURL string  `json:"redirect_url"`
}

// ProviderPayment is the provider's view of a created payment
type ProviderPayment struct {
	TransactionID string         `json:"transaction_id"`
	PaymentURL    string         `json:"payment_url"`
	Status        ProviderStatus `json:"status"`
}

// ProviderGateway abstracts the payment provider. Webhook bodies only carry
// the transaction ID; the authoritative status is always fetched through
// GetPaymentStatus so a forged webhook cannot flip an order.
type ProviderGateway interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*ProviderPayment, error)
	GetPaymentStatus(ctx context.Context, providerTransactionID string) (ProviderStatus, error)
	Name() string
}

// RESTGateway talks to a real provider over HTTP
type RESTGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRESTGateway creates a gateway for an HTTP payment provider
func NewRESTGateway(baseURL, apiKey string, timeout time.Duration) *RESTGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RESTGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *RESTGateway) Name() string {
	return "rest"
}

func (g *RESTGateway) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*ProviderPayment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %s", ErrProviderUnavailable, err.Error())
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: provider returned %d", ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: provider returned %d: %s", ErrProviderRejected, resp.StatusCode, string(respBody))
	}

	var payment ProviderPayment
	if err := json.Unmarshal(respBody, &payment); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	if payment.TransactionID == "" {
		return nil, fmt.Errorf("provider response missing transaction_id")
	}

	return &payment, nil
}

func (g *RESTGateway) GetPaymentStatus(ctx context.Context, providerTransactionID string) (ProviderStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/payments/"+providerTransactionID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build status request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrProviderUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrTransactionNotFound
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: provider returned %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var payment ProviderPayment
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payment); err != nil {
		return "", fmt.Errorf("failed to decode provider response: %w", err)
	}

	return payment.Status, nil
}

// MockGateway is an in-memory provider for local development. Payment URLs
// point back at our own mock completion endpoint, so the full checkout ->
// pay -> webhook loop works without an external provider.
type MockGateway struct {
	publicBaseURL string

	mu       sync.RWMutex
	payments map[string]ProviderStatus
}

// NewMockGateway creates a mock payment provider
func NewMockGateway(publicBaseURL string) *MockGateway {
	return &MockGateway{
		publicBaseURL: publicBaseURL,
		payments:      make(map[string]ProviderStatus),
	}
}

func (g *MockGateway) Name() string {
	return "mock"
}

func (g *MockGateway) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*ProviderPayment, error) {
	transactionID := "mock_" + uuid.New().String()

	g.mu.Lock()
	g.payments[transactionID] = ProviderStatusProcessing
	g.mu.Unlock()

	return &ProviderPayment{
		TransactionID: transactionID,
		PaymentURL:    fmt.Sprintf("%s/payments/mock/%s", g.publicBaseURL, transactionID),
		Status:        ProviderStatusProcessing,
	}, nil
}

func (g *MockGateway) GetPaymentStatus(ctx context.Context, providerTransactionID string) (ProviderStatus, error) {
	g.mu.RLock()
	status, ok := g.payments[providerTransactionID]
	g.mu.RUnlock()

	if !ok {
		return "", ErrTransactionNotFound
	}
	return status, nil
}

// Complete sets the outcome of a mock payment. Called by the mock completion
// endpoint before the webhook is dispatched.
func (g *MockGateway) Complete(providerTransactionID string, outcome ProviderStatus) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	current, ok := g.payments[providerTransactionID]
	if !ok {
		return ErrTransactionNotFound
	}
	if current != ProviderStatusProcessing && current != ProviderStatusPending {
		return fmt.Errorf("mock payment %s already finished as %s", providerTransactionID, current)
	}

	g.payments[providerTransactionID] = outcome
	return nil
}
