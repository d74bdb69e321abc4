// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides outbound HTTP helpers.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay is the first backoff interval. Tests override it to avoid
// real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 4

// Retryable reports whether a response status is worth another attempt:
// 429 and the transient gateway errors mirrors commonly return.
func Retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry executes req and retries on Retryable statuses with
// exponential backoff starting at RetryBaseDelay. When maxRetries is 0 the
// default (4) is used. A cancelled context during backoff returns
// ctx.Err(). After the last attempt the final response is returned as-is so
// the caller can inspect it. logger may be nil.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, logger *zap.Logger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	backoff := RetryBaseDelay
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		logger.Warn("retrying request",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.Duration("backoff", backoff),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
