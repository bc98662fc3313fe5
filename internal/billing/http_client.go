package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// ClientConfig configures the payment service client.
type ClientConfig struct {
	// BaseURL is the payment service endpoint.
	BaseURL string

	// APIKey authenticates requests to the payment service.
	APIKey string

	// RequestTimeout bounds a single refund call.
	RequestTimeout time.Duration

	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	Interval time.Duration

	// Timeout is the period of the open state.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that trips
	// the breaker.
	FailureThreshold uint32
}

// DefaultClientConfig returns a sensible default configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		RequestTimeout:   10 * time.Second,
		MaxRequests:      3,
		Interval:         10 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// HTTPRefundService calls the payment service over HTTP with circuit
// breaker protection.
type HTTPRefundService struct {
	config  ClientConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewHTTPRefundService creates a payment service client.
func NewHTTPRefundService(config ClientConfig, logger *slog.Logger) *HTTPRefundService {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "payment-service",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"service", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &HTTPRefundService{
		config:  config,
		client:  &http.Client{Timeout: config.RequestTimeout},
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
		logger:  logger,
	}
}

// RefundOfferPayments refunds all captured payments for the offer.
func (s *HTTPRefundService) RefundOfferPayments(ctx context.Context, offerID uuid.UUID) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.doRefund(ctx, offerID)
	})
	if err == gobreaker.ErrOpenState {
		return fmt.Errorf("payment service unavailable: %w", err)
	}
	return err
}

func (s *HTTPRefundService) doRefund(ctx context.Context, offerID uuid.UUID) error {
	body, err := json.Marshal(map[string]string{"offer_id": offerID.String()})
	if err != nil {
		return fmt.Errorf("failed to encode refund request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/refunds", s.config.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build refund request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("refund request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("refund request returned %d: %s", resp.StatusCode, string(msg))
	}

	return nil
}
