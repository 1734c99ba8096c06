// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"slide-composer/internal/common/config"
)

// Worker is an open job subscription for one task type.
type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// StartWorker subscribes handler to taskType. It returns nil when the
// worker is disabled.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler worker.JobHandler, logger *zap.Logger) *Worker {
	if !wcfg.Enabled {
		logger.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	step := client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		Name(taskType)
	if wcfg.MaxJobsActive > 0 {
		step = step.MaxJobsActive(wcfg.MaxJobsActive)
	}
	if wcfg.Timeout > 0 {
		step = step.Timeout(time.Duration(wcfg.Timeout) * time.Millisecond)
	}

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return &Worker{worker: step.Open(), logger: logger, taskType: taskType}
}

// Stop closes the subscription and waits for in-flight jobs.
func (w *Worker) Stop() {
	if w == nil {
		return
	}
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}
