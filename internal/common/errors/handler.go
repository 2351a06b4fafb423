// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// CommandTimeout bounds one broker command sent for a job. Commands never
// inherit the job's context, which may already be past its deadline.
const CommandTimeout = 5 * time.Second

// CommandSender delivers one job command (complete, fail, throw) to the broker.
type CommandSender interface {
	SendCommand(operation string, send func(context.Context) error) error
}

// detachedSender makes a single attempt on a fresh context.
type detachedSender struct{}

func (detachedSender) SendCommand(_ string, send func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
	defer cancel()
	return send(ctx)
}

// ErrorHandler handles job errors with standardized error handling
type ErrorHandler struct {
	logger Logger
	sender CommandSender
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger, sender: detachedSender{}}
}

// UseSender routes job commands through s, usually a retrying Zeebe client.
func (h *ErrorHandler) UseSender(s CommandSender) {
	if s != nil {
		h.sender = s
	}
}

// Send delivers a job command and logs when it could not be delivered.
func (h *ErrorHandler) Send(job entities.Job, operation string, send func(context.Context) error) error {
	err := h.sender.SendCommand(operation, send)
	if err != nil {
		h.logger.Error("failed to send job command", map[string]interface{}{
			"jobKey":    job.Key,
			"jobType":   job.Type,
			"operation": operation,
			"error":     err.Error(),
		})
	}
	return err
}

// HandleJobError fails the job with retries for technical errors and throws a
// BPMN error otherwise.
func (h *ErrorHandler) HandleJobError(client worker.JobClient, job entities.Job, err error) {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logError(job, stdErr, bpmnErr)

	if stdErr.Retryable && IsRetryableErrorCode(stdErr.Code) && job.Retries > 0 {
		h.failJobWithRetries(client, job, bpmnErr, GetRetryCount(stdErr.Code))
	} else {
		h.throwBPMNError(client, job, bpmnErr)
	}
}

// Normalize unwraps err to a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewAnalysisTimeoutError("job")
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) failJobWithRetries(client worker.JobClient, job entities.Job, bpmnErr *BPMNError, maxRetries int) {
	// job.Retries is what Zeebe has left; never hand back more than that
	retriesToUse := maxRetries
	if int(job.Retries) < maxRetries {
		retriesToUse = int(job.Retries) - 1
	}
	if retriesToUse < 0 {
		retriesToUse = 0
	}

	step := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retriesToUse)).
		ErrorMessage(bpmnErr.Message)

	var cmd commands.DispatchFailJobCommand = step
	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := step.VariablesFromString(string(varsJSON)); err == nil {
			cmd = withVars
		}
	}
	_ = h.Send(job, "fail job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
}

func (h *ErrorHandler) throwBPMNError(client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			cmd = withVars
		}
	}
	_ = h.Send(job, "throw error", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          bpmnErr.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
