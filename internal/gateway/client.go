package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"vendordesk/internal/config"
	apperrors "vendordesk/internal/errors"
	"vendordesk/internal/infrastructure/metrics"
)

const maxErrorBody = 512

// Client talks to the marketplace backend. Every call is a single request:
// nothing is retried and failures are returned as NetworkError, ServerError
// or ParseError for the caller to interpret.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Registry
	logger     *zap.Logger
}

func NewClient(cfg config.BackendConfig, httpClient *http.Client, reg *metrics.Registry, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		metrics:    reg,
		logger:     logger,
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError(op+": encoding request", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return apperrors.NewInternalError(op+": building request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	err = c.roundTrip(req, op, out)
	c.metrics.GatewayLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	c.metrics.GatewayRequests.WithLabelValues(op, outcome).Inc()

	c.logger.Debug("backend request",
		zap.String("operation", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	return err
}

func (c *Client) roundTrip(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewNetworkError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apperrors.NewServerError(op, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewParseError(fmt.Sprintf("%s response body", op), err)
	}
	return nil
}
