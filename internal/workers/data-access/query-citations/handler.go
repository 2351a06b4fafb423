// internal/workers/data-access/query-citations/handler.go
package querycitations

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"citation-intelligence/internal/common/errors"
	"citation-intelligence/internal/common/logger"
	"citation-intelligence/internal/common/metrics"
	"citation-intelligence/internal/common/observability"
	"citation-intelligence/internal/common/validation"
	"citation-intelligence/internal/models"
	"citation-intelligence/internal/workers/data-access/query-citations/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "query-citations"
)

type Handler struct {
	config       *Config
	db           *sql.DB
	validator    *validation.Validator
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the worker. validator and obs may be nil.
func NewHandler(config *Config, db *sql.DB, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
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

	queryType := models.QueryType(input.QueryType)
	if _, exists := queries.Registry[queryType]; !exists {
		return nil, errors.NewInvalidQueryTypeError(input.QueryType)
	}

	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.String("queryType", input.QueryType))
	defer span.End()

	result, err := queries.Execute(ctx, h.db, queryType, input.Params)
	if err != nil {
		span.RecordError(err)
		switch {
		case stderrors.Is(err, queries.ErrMissingParam):
			return nil, errors.NewCitationBatchInvalidError(err.Error())
		case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, errors.NewCitationQueryTimeoutError(input.QueryType)
		default:
			return nil, errors.NewCitationQueryFailedError(input.QueryType, err)
		}
	}

	output := &Output{
		Citations:          result.Citations,
		TrackedQueries:     make([]string, 0, len(result.TrackedQueries)),
		RowCount:           result.RowCount,
		QueryExecutionTime: result.ExecutionTime,
	}
	if output.Citations == nil {
		output.Citations = make([]models.CitationRecord, 0)
	}
	for _, q := range result.TrackedQueries {
		output.TrackedQueries = append(output.TrackedQueries, q.QueryText)
	}
	span.SetAttributes(attribute.Int("rowCount", output.RowCount))

	h.logger.Info("citation query executed", map[string]interface{}{
		"queryType": input.QueryType,
		"rowCount":  output.RowCount,
		"execMs":    output.QueryExecutionTime,
	})
	return output, nil
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
