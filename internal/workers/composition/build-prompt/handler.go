package buildprompt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "slide-composer/internal/common/errors"
	"slide-composer/internal/common/logger"
	"slide-composer/internal/common/metrics"
	"slide-composer/internal/composer/prompt"
	"slide-composer/internal/composer/registry"
)

const TaskType = "build-prompt"

// Handler produces the content-generation prompt for the registered slide
// kinds, ahead of the generation task in the process.
type Handler struct {
	config   *Config
	registry *registry.Registry
	logger   logger.Logger
}

func NewHandler(config *Config, reg *registry.Registry, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		registry: reg,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, string(apperrors.ErrCodeInputInvalid), fmt.Sprintf("parse input: %v", err))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, string(apperrors.ErrCodeInternal), err.Error())
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	text, err := prompt.Build(h.registry.Entries(), input.Images, input.UserPrompt)
	if err != nil {
		return nil, err
	}
	return &Output{Prompt: text, SlideTypes: h.registry.Tags()}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(ctx)
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"error": err.Error()})
	}
}
