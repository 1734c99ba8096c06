package camunda

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"slide-composer/internal/common/config"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"dial tcp: i/o timeout", true},
		{"permission denied", false},
		{"NOT_FOUND: no such process", false},
	}
	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(errors.New(tt.err)))
		})
	}
}

func TestDial_RequiresAddress(t *testing.T) {
	_, err := Dial(context.Background(), config.CamundaConfig{}, DefaultRetryConfig, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker address")
}

func TestStartWorker_Disabled(t *testing.T) {
	w := StartWorker(nil, "compose-deck", config.WorkerConfig{Enabled: false}, nil, zaptest.NewLogger(t))
	assert.Nil(t, w)
	w.Stop()
}
