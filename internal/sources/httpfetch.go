package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/pkg/circuitbreaker"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/retry"
)

const userAgent = "xnosis-corpus-loader/1.0"

type StatusError struct {
	URL        string
	StatusCode int
	// Wait is the parsed Retry-After header, zero when absent.
	Wait time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

func (e *StatusError) RetryAfter() time.Duration { return e.Wait }

func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// fetcher performs JSON GETs behind a circuit breaker with retries. 429 and
// 5xx responses are retried; other 4xx responses fail at once.
type fetcher struct {
	client   *http.Client
	breaker  *circuitbreaker.CircuitBreaker
	retryCfg retry.Config
}

func newFetcher(name string, timeout time.Duration) *fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cbCfg := circuitbreaker.DefaultConfig()
	cbCfg.Logger = logger.GetLogger()
	cbCfg.IsSuccessful = func(err error) bool {
		return err == nil || retry.IsPermanent(err)
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.InitialDelay = 500 * time.Millisecond
	retryCfg.Logger = logger.GetLogger()

	return &fetcher{
		client:   &http.Client{Timeout: timeout},
		breaker:  circuitbreaker.NewCircuitBreaker(name, cbCfg),
		retryCfg: retryCfg,
	}
}

func (f *fetcher) getJSON(ctx context.Context, url string, out any) error {
	return retry.Do(ctx, f.retryCfg, func() error {
		err := f.breaker.Execute(ctx, func() error {
			return f.doGet(ctx, url, out)
		})
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			return retry.Permanent(err)
		}
		return err
	})
}

func (f *fetcher) doGet(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		statusErr := &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Wait:       parseRetryAfter(resp.Header.Get("Retry-After")),
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			logger.Warn("Upstream responded with retryable status",
				zap.String("url", url),
				zap.Int("status", resp.StatusCode),
			)
			return statusErr
		}
		return retry.Permanent(statusErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Permanent(fmt.Errorf("failed to decode response from %s: %w", url, err))
	}
	return nil
}

// parseRetryAfter accepts the delay-seconds form only.
func parseRetryAfter(v string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
