package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"

	domainErrors "github.com/omnicart/fulfillment/internal/domain/errors"
	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/pkg/resilience"
)

const serviceName = "settlement-processor"

// Client drives settlement against the external payment processor.
type Client interface {
	// Settle submits a charge and returns the definitive settlement
	// outcome. Any error means no definitive success was obtained; callers
	// must treat it as a failed settlement.
	Settle(ctx context.Context) (model.PaymentStatus, error)
}

// HTTPClient implements Client against the processor HTTP API under a
// timeout/retry/breaker policy.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	caller     *resilience.Caller
	logger     *slog.Logger
}

// NewHTTPClient creates a resilient settlement client.
func NewHTTPClient(baseURL string, policy resilience.Policy, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse processor url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("processor url must be absolute")
	}
	return &HTTPClient{
		baseURL:    parsed,
		httpClient: &http.Client{},
		caller:     resilience.NewCaller(serviceName, policy, logger),
		logger:     logger,
	}, nil
}

// Settle queries the processor. The sandbox contract returns an integer
// sample; an even value settles the charge, an odd one declines it.
func (c *HTTPClient) Settle(ctx context.Context) (model.PaymentStatus, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/v1.0/random")

	var status model.PaymentStatus
	err := c.caller.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			apiErr := &domainErrors.ExternalAPIError{
				Service: serviceName,
				Status:  resp.StatusCode,
				Body:    string(body),
			}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return resilience.Permanent(apiErr)
			}
			return apiErr
		}

		var sample []int
		if err := json.NewDecoder(resp.Body).Decode(&sample); err != nil {
			return err
		}
		if len(sample) == 0 {
			return resilience.Permanent(&domainErrors.ExternalAPIError{
				Service: serviceName,
				Status:  resp.StatusCode,
				Body:    "empty sample from processor",
			})
		}

		if sample[0]%2 == 0 {
			status = model.PaymentStatusSucceeded
		} else {
			status = model.PaymentStatusFailed
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return status, nil
}
