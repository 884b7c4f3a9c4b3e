// Package transfer implements the external value-transfer primitive: an HTTP
// client against the settlement endpoint, wrapped in a circuit breaker so a
// struggling settlement channel fails fast instead of holding the store lock
// on every refund attempt.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/abgdnv/storefront/internal/store/ledger"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// request is the settlement endpoint's wire format.
type request struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// Client delivers value to accounts over HTTP. It satisfies ledger.Transfer.
type Client struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[struct{}]
}

var _ ledger.Transfer = (*Client)(nil)

// NewClient creates a settlement client for the configured endpoint.
func NewClient(cfg config.TransferConfig) *Client {
	st := gobreaker.Settings{
		Name:        "settlement-cb",
		MaxRequests: 3,
		Timeout:     cfg.CircuitBreaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.CircuitBreaker.ConsecutiveFailures ||
				(counts.TotalSuccesses+counts.TotalFailures > cfg.CircuitBreaker.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.TotalSuccesses+counts.TotalFailures)*100 > float64(cfg.CircuitBreaker.ErrorRatePercent))
		},
	}
	return &Client{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		breaker:  gobreaker.NewCircuitBreaker[struct{}](st),
	}
}

// Transfer posts a settlement order for the given account and amount. Any
// transport error, non-2xx response or open breaker is reported as a failure;
// the caller decides what that does to the enclosing operation.
func (c *Client) Transfer(to ledger.Account, amount uint64) error {
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.post(to, amount)
	})
	if err != nil {
		return fmt.Errorf("transfer of %d to %s: %w", amount, to, err)
	}
	return nil
}

func (c *Client) post(to ledger.Account, amount uint64) error {
	body, err := json.Marshal(request{To: string(to), Amount: amount})
	if err != nil {
		return fmt.Errorf("failed to encode transfer request: %w", err)
	}
	resp, err := c.client.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("settlement endpoint unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("settlement endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
