// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"slide-composer/internal/common/config"
)

// RetryConfig defines retry behavior for transient connection failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// Dial opens a plaintext gateway connection and waits until the broker
// answers a topology request. Transient failures are retried with
// exponential backoff.
func Dial(ctx context.Context, cfg config.CamundaConfig, retry RetryConfig, log *zap.Logger) (zbc.Client, error) {
	if cfg.BrokerAddress == "" {
		return nil, fmt.Errorf("camunda broker address is required")
	}

	client, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Millisecond
	delay := retry.BaseDelay
	for attempt := 0; ; attempt++ {
		err = HealthCheck(ctx, client, timeout)
		if err == nil {
			return client, nil
		}
		if !isRetryable(err) || attempt >= retry.MaxRetries {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Zeebe broker at %s after %d attempts: %w",
				cfg.BrokerAddress, attempt+1, err)
		}

		log.Warn("Zeebe broker not ready, retrying...",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("maxRetries", retry.MaxRetries),
			zap.Duration("nextRetryIn", delay),
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			client.Close()
			return nil, ctx.Err()
		}
		delay *= 2
		if delay > retry.MaxDelay {
			delay = retry.MaxDelay
		}
	}
}

// HealthCheck performs a topology request against the broker.
func HealthCheck(ctx context.Context, client zbc.Client, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
