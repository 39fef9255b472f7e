package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.mapbox.com"
	placesPath     = "/geocoding/v5/mapbox.places/"

	defaultRetryInterval = 200 * time.Millisecond
	maxBodyBytes         = 1 << 20
)

var tracer = otel.Tracer("listing-service/geocoding")

// StatusError is returned for non-200 responses from the Places API.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mapbox: unexpected status %d", e.StatusCode)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client is a forward geocoder backed by the Mapbox Places API.
type Client struct {
	token         string
	baseURL       string
	timeout       time.Duration
	maxRetries    uint64
	retryInterval time.Duration
	httpClient    *http.Client
	logger        *logger.Logger
}

// NewClient builds a geocoder. An empty baseURL selects the public API.
// timeout bounds one ForwardGeocode call including retries.
func NewClient(token, baseURL string, timeout time.Duration, maxRetries uint64, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		token:         token,
		baseURL:       strings.TrimRight(baseURL, "/"),
		timeout:       timeout,
		maxRetries:    maxRetries,
		retryInterval: defaultRetryInterval,
		httpClient:    &http.Client{},
		logger:        log.Named("MapboxGeocoder"),
	}
}

// ForwardGeocode resolves query to at most limit features. A blank query or
// an empty FeatureCollection yields no features and no error.
func (c *Client) ForwardGeocode(ctx context.Context, query string, limit int) ([]domain.Feature, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Feature{}, nil
	}

	ctx, span := tracer.Start(ctx, "Mapbox.ForwardGeocode", oteltrace.WithAttributes(
		attribute.String("geocode.query", query),
		attribute.Int("geocode.limit", limit),
	))
	defer span.End()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reqURL := c.requestURL(query, limit)

	var features []domain.Feature
	attempt := 0
	op := func() error {
		attempt++
		var err error
		features, err = c.fetch(ctx, reqURL)
		if err == nil {
			return nil
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		c.logger.Warn("Geocoding request failed, retrying",
			zap.String("query", query), zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(err))
	})
	span.SetAttributes(attribute.Int("geocode.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("Geocoding failed", zap.String("query", query), zap.Int("attempts", attempt), zap.Error(err))
		return nil, fmt.Errorf("mapbox: forward geocode %q: %w", query, err)
	}

	span.SetAttributes(attribute.Int("geocode.features", len(features)))
	c.logger.Debug("Geocoding response", zap.String("query", query), zap.Int("features", len(features)))
	return features, nil
}

func (c *Client) requestURL(query string, limit int) string {
	params := url.Values{}
	params.Set("access_token", c.token)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.baseURL + placesPath + url.PathEscape(query) + ".json?" + params.Encode()
}

func (c *Client) fetch(ctx context.Context, reqURL string) ([]domain.Feature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var payload apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode json: %w", err))
	}
	return mapFeatures(payload.Features), nil
}
