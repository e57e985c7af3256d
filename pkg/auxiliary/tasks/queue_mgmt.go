// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	asynqclient "github.com/gardener/inventory-bindings/pkg/clients/asynq"
	"github.com/gardener/inventory-bindings/pkg/metrics"
	asynqutils "github.com/gardener/inventory-bindings/pkg/utils/asynq"
)

const (
	// DeleteArchivedTaskType is the name of the task responsible for deleting
	// archived tasks from a task queue
	DeleteArchivedTaskType = "aux:task:delete-archived-tasks"

	// DeleteCompletedTaskType is the name of the task responsible for deleting
	// completed tasks from a task queue
	DeleteCompletedTaskType = "aux:task:delete-completed-tasks"
)

// ErrNoQueue is returned when a queue management task is called without a
// queue name.
var ErrNoQueue = errors.New("queue name is empty")

// DeleteQueuePayload represents the payload of a task management task.
type DeleteQueuePayload struct {
	// Name of the queue that holds the tasks.
	Queue string `yaml:"queue" json:"queue"`
}

// HandleDeleteArchivedTask deletes archived tasks.
func HandleDeleteArchivedTask(ctx context.Context, task *asynq.Task) error {
	return handleDeleteTasks(ctx, task, "archived", (*asynq.Inspector).DeleteAllArchivedTasks)
}

// HandleDeleteCompletedTask deletes completed tasks.
func HandleDeleteCompletedTask(ctx context.Context, task *asynq.Task) error {
	return handleDeleteTasks(ctx, task, "completed", (*asynq.Inspector).DeleteAllCompletedTasks)
}

func handleDeleteTasks(ctx context.Context, task *asynq.Task, state string, deleteFn func(*asynq.Inspector, string) (int, error)) error {
	var payload DeleteQueuePayload
	if err := asynqutils.Unmarshal(task.Payload(), &payload); err != nil {
		return asynqutils.SkipRetry(err)
	}

	if payload.Queue == "" {
		return asynqutils.SkipRetry(ErrNoQueue)
	}

	inspector, err := asynqclient.GetInspector()
	if err != nil {
		return asynqutils.SkipRetry(err)
	}

	logger := asynqutils.GetLogger(ctx)
	count, err := deleteFn(inspector, payload.Queue)
	if err != nil {
		return err
	}

	logger.Info("deleted tasks", "state", state, "queue", payload.Queue, "count", count)
	metric := prometheus.MustNewConstMetric(
		queueDeletedTasksDesc,
		prometheus.GaugeValue,
		float64(count),
		payload.Queue,
		state,
	)
	metrics.DefaultCollector.AddMetric(metrics.Key(task.Type(), payload.Queue), metric)

	return nil
}
