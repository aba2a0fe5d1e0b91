package userclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"

	domainErrors "github.com/omnicart/fulfillment/internal/domain/errors"
	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/pkg/resilience"
)

const serviceName = "user-service"

// Client exposes operations to resolve user profiles.
type Client interface {
	// FindByID fetches a profile on behalf of the caller identified by
	// bearer. The original credential is relayed unchanged so the user
	// service authorizes the same subject.
	FindByID(ctx context.Context, id int64, bearer string) (*model.UserProfile, error)
}

// HTTPClient implements Client via the user service HTTP API under a
// timeout/retry/breaker policy.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	caller     *resilience.Caller
	logger     *slog.Logger
}

// response mirrors the JSON payload from the user service.
type response struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

// NewHTTPClient creates a resilient user service client.
func NewHTTPClient(baseURL string, policy resilience.Policy, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse user service url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("user service url must be absolute")
	}
	return &HTTPClient{
		baseURL:    parsed,
		httpClient: &http.Client{},
		caller:     resilience.NewCaller(serviceName, policy, logger),
		logger:     logger,
	}, nil
}

// FindByID queries the user service for a profile.
func (c *HTTPClient) FindByID(ctx context.Context, id int64, bearer string) (*model.UserProfile, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/v1/users/", strconv.FormatInt(id, 10))

	var profile *model.UserProfile
	err := c.caller.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var data response
			if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
				return err
			}
			profile = &model.UserProfile{
				ID:      data.ID,
				Name:    data.Name,
				Surname: data.Surname,
				Email:   data.Email,
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return resilience.Permanent(domainErrors.ErrNotFound)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			body, _ := io.ReadAll(resp.Body)
			return resilience.Permanent(&domainErrors.ExternalAPIError{
				Service: serviceName,
				Status:  resp.StatusCode,
				Body:    string(body),
			})
		default:
			body, _ := io.ReadAll(resp.Body)
			c.logger.Error("user service request failed",
				slog.Int("status", resp.StatusCode),
				slog.String("body", string(body)),
			)
			return &domainErrors.ExternalAPIError{
				Service: serviceName,
				Status:  resp.StatusCode,
				Body:    string(body),
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}
