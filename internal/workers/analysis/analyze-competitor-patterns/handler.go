// internal/workers/analysis/analyze-competitor-patterns/handler.go
package analyzecompetitorpatterns

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"citation-intelligence/internal/analysis/patterns"
	"citation-intelligence/internal/common/errors"
	"citation-intelligence/internal/common/logger"
	"citation-intelligence/internal/common/metrics"
	"citation-intelligence/internal/common/observability"
	"citation-intelligence/internal/common/validation"
	"citation-intelligence/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "analyze-competitor-patterns"
)

type Handler struct {
	config       *Config
	analyzer     *patterns.Analyzer
	validator    *validation.Validator
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, analyzer *patterns.Analyzer, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		analyzer:     analyzer,
		validator:    validator,
		obs:          obs,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.run(ctx, job.Variables)
	if err != nil {
		metrics.ObserveJob(TaskType, started, string(errors.Normalize(err).Code))
		h.obs.RecordJobProcessed(ctx, "failed")
		h.errorHandler.HandleJobError(client, job, err)
		return
	}

	metrics.ObserveJob(TaskType, started, "")
	h.obs.RecordJobProcessed(ctx, "completed")
	h.obs.RecordJobDuration(ctx, time.Since(started), "completed")
	h.completeJob(client, job, output)
}

func (h *Handler) run(ctx context.Context, variables string) (*Output, error) {
	input, err := h.parseInput(variables)
	if err != nil {
		return nil, err
	}
	return h.execute(ctx, input)
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	if h.validator != nil {
		result, err := h.validator.ValidateVariables(TaskType, variables)
		if err != nil {
			return nil, errors.NewCitationBatchInvalidError(err.Error())
		}
		if !result.Valid {
			return nil, errors.NewCitationBatchInvalidError(result.Summary())
		}
	}
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewCitationBatchInvalidError("parse input: " + err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewCitationBatchInvalidError("input cannot be nil")
	}
	if ctx.Err() != nil {
		return nil, errors.NewAnalysisTimeoutError(TaskType)
	}

	_, span := h.obs.StartSpan(ctx, TaskType,
		attribute.Int("citationCount", len(input.Citations)),
		attribute.Int("competitorDomains", len(input.CompetitorDomains)),
	)
	defer span.End()

	found, err := h.profile(input)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("competitorCount", len(found)))

	return &Output{
		CompetitorPatterns: found,
		CompetitorCount:    len(found),
	}, nil
}

func (h *Handler) profile(input *Input) (out []models.CompetitorPattern, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewAnalysisFailedError(TaskType, fmt.Errorf("panic: %v", r))
		}
	}()
	return h.analyzer.AnalyzeCompetitorPatterns(input.Citations, input.CompetitorDomains), nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	_ = h.errorHandler.Send(job, "complete job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
}

// UseCommandSender routes complete, fail and throw commands through s.
func (h *Handler) UseCommandSender(s errors.CommandSender) {
	h.errorHandler.UseSender(s)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
