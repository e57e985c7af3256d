// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package asynq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gardener/inventory-bindings/pkg/metrics"
)

// Outcome describes how the processing of a task ended.
type Outcome string

const (
	// OutcomeSucceeded is the outcome of tasks, which returned no error.
	OutcomeSucceeded Outcome = "succeeded"

	// OutcomeSkipped is the outcome of tasks, which failed with an error
	// wrapping [asynq.SkipRetry].
	OutcomeSkipped Outcome = "skipped"

	// OutcomeFailed is the outcome of tasks, which failed and will be
	// retried.
	OutcomeFailed Outcome = "failed"
)

// OutcomeOf returns the [Outcome] for the error returned by a task handler.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSucceeded
	case errors.Is(err, asynq.SkipRetry):
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}

// NewLoggerMiddleware returns a new [asynq.MiddlewareFunc], which embeds a
// [slog.Logger] in the context provided to task handlers. Log events of the
// embedded logger carry the id, queue, name and retry count of the task.
func NewLoggerMiddleware(logger *slog.Logger) asynq.MiddlewareFunc {
	return func(handler asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			attrs := []any{
				slog.String("task_name", task.Type()),
				slog.String("task_queue", GetQueueName(ctx)),
			}

			if taskID, ok := asynq.GetTaskID(ctx); ok {
				attrs = append(attrs, slog.String("task_id", taskID))
			}

			retried, okRetried := asynq.GetRetryCount(ctx)
			maxRetry, okMaxRetry := asynq.GetMaxRetry(ctx)
			if okRetried && okMaxRetry && retried > 0 {
				attrs = append(attrs, slog.String("task_retry", fmt.Sprintf("%d/%d", retried, maxRetry)))
			}

			return handler.ProcessTask(WithLogger(ctx, logger.With(attrs...)), task)
		})
	}
}

// NewMeasuringMiddleware returns a new [asynq.MiddlewareFunc], which logs the
// outcome and duration of tasks.
func NewMeasuringMiddleware() asynq.MiddlewareFunc {
	return func(handler asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			logger := GetLogger(ctx)
			logger.Info("received task")

			start := time.Now()
			err := handler.ProcessTask(ctx, task)
			elapsed := time.Since(start)

			outcome := OutcomeOf(err)
			switch outcome {
			case OutcomeSucceeded:
				logger.Info("task finished", "outcome", outcome, "duration", elapsed)
			default:
				logger.Warn("task finished", "outcome", outcome, "duration", elapsed, "reason", err)
			}

			return err
		})
	}
}

// NewMetricsMiddleware returns a new [asynq.MiddlewareFunc], which counts the
// outcomes of tasks and observes the duration of successful ones.
func NewMetricsMiddleware() asynq.MiddlewareFunc {
	counters := map[Outcome]func(taskName, queueName string){
		OutcomeSucceeded: func(taskName, queueName string) {
			metrics.TaskSuccessfulTotal.WithLabelValues(taskName, queueName).Inc()
		},
		OutcomeSkipped: func(taskName, queueName string) {
			metrics.TaskSkippedTotal.WithLabelValues(taskName, queueName).Inc()
		},
		OutcomeFailed: func(taskName, queueName string) {
			metrics.TaskFailedTotal.WithLabelValues(taskName, queueName).Inc()
		},
	}

	return func(handler asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			taskName := task.Type()
			queueName := GetQueueName(ctx)

			start := time.Now()
			err := handler.ProcessTask(ctx, task)
			outcome := OutcomeOf(err)
			if outcome == OutcomeSucceeded {
				metrics.TaskDurationSeconds.WithLabelValues(taskName, queueName).Observe(time.Since(start).Seconds())
			}
			counters[outcome](taskName, queueName)

			return err
		})
	}
}
