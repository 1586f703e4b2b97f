package marqo

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/marqo-ai/compat-runner/internal/logging"
)

// WaitReady polls the root endpoint until the server answers or timeout
// elapses. Marqo loads models on startup, so the first successful answer
// can take minutes on a cold container.
func (c *Client) WaitReady(ctx context.Context, timeout time.Duration) (*Info, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second

	start := time.Now()
	info, err := backoff.Retry(ctx, func() (*Info, error) {
		return c.Info(ctx)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(timeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			logging.Debug("marqo not ready", "url", c.baseURL, "error", err, "retry_in", next)
		}),
	)
	if err != nil {
		return nil, err
	}

	logging.Debug("marqo ready", "url", c.baseURL, "version", info.Version, "waited", time.Since(start).Round(time.Millisecond))
	return info, nil
}
