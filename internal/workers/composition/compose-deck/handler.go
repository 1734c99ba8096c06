package composedeck

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"

	apperrors "slide-composer/internal/common/errors"
	"slide-composer/internal/common/logger"
	"slide-composer/internal/common/metrics"
	"slide-composer/internal/composer/engine"
	"slide-composer/internal/store"
)

const TaskType = "compose-deck"

// inputSchema checks the job variables before they reach the engine.
const inputSchema = `{
	"type": "object",
	"required": ["slides"],
	"properties": {
		"requestId": {"type": "string"},
		"title": {"type": "string"},
		"format": {"enum": ["", "markup", "deck", "both"]},
		"slides": {
			"type": "array",
			"items": {"type": "object"}
		},
		"images": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"required": ["path"],
				"properties": {
					"filename": {"type": "string"},
					"path": {"type": "string"}
				}
			}
		}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(inputSchema)

type Handler struct {
	config       *Config
	engine       *engine.Engine
	sink         store.Sink
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, e *engine.Engine, sink store.Sink, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       e,
		sink:         sink,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var raw interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		h.fail(ctx, client, job, apperrors.NewInputInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}
	if err := validateInput(raw); err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.NewInputInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func validateInput(raw interface{}) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return apperrors.NewInputInvalidError(fmt.Sprintf("validation error: %v", err))
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return apperrors.NewInputInvalidError(fmt.Sprintf("input validation failed: %v", errs))
	}
	return nil
}

// Execute composes the requested outputs and stores them. Slide-level
// failures are reported in the output; only store failures fail the job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	format := input.Format
	if format == "" {
		format = h.config.DefaultFormat
	}

	var backends []engine.Backend
	switch format {
	case "markup":
		backends = []engine.Backend{engine.BackendMarkup}
	case "deck":
		backends = []engine.Backend{engine.BackendDeck}
	case "both", "":
		backends = []engine.Backend{engine.BackendMarkup, engine.BackendDeck}
	default:
		return nil, apperrors.NewInputInvalidError(fmt.Sprintf("unknown format %q", format))
	}

	in := &engine.Input{Records: input.Slides, Images: input.Images, Title: input.Title}
	out := &Output{Composition: Composition{RequestId: input.RequestId, Status: "ok"}}

	for _, backend := range backends {
		var (
			res *engine.Result
			err error
		)
		if backend == engine.BackendMarkup {
			res, err = h.engine.ComposeMarkup(ctx, in)
		} else {
			res, err = h.engine.ComposeDeck(ctx, in)
		}
		if err != nil {
			return nil, apperrors.NewRenderFailedError(-1, "", err)
		}

		summary := summarize(res)
		if h.sink != nil {
			keys, err := store.Persist(ctx, h.sink, res)
			if err != nil {
				return nil, err
			}
			summary.Keys = keys
		}
		out.Composition.Runs = append(out.Composition.Runs, summary)
		out.Composition.Status = worse(out.Composition.Status, res.Status())
	}

	h.logger.Info("composition completed", map[string]interface{}{
		"requestId": input.RequestId,
		"status":    out.Composition.Status,
		"slides":    len(input.Slides),
	})
	return out, nil
}

func summarize(res *engine.Result) RunSummary {
	s := RunSummary{
		RunId:     res.RunID.String(),
		Backend:   string(res.Backend),
		Mode:      string(res.Mode),
		Total:     res.Total,
		Rendered:  res.Rendered,
		Skipped:   res.Skipped,
		Fallbacks: res.Fallbacks,
		Warnings:  res.Warnings,
	}
	for _, f := range res.Failures {
		s.Failures = append(s.Failures, SlideFailure{Index: f.Index, SlideType: f.SlideType, Code: string(f.Code)})
	}
	return s
}

var statusRank = map[string]int{"ok": 0, "partial": 1, "failed": 2}

func worse(a, b string) string {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
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

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := string(apperrors.ErrCodeInternal)
	if stdErr, ok := apperrors.AsStandard(err); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
