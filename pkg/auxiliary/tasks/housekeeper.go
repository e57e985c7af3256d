// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gardener/inventory-bindings/pkg/clients/db"
	"github.com/gardener/inventory-bindings/pkg/core/registry"
	"github.com/gardener/inventory-bindings/pkg/metrics"
	asynqutils "github.com/gardener/inventory-bindings/pkg/utils/asynq"
)

const (
	// HousekeeperTaskType is the name of the task responsible for cleaning
	// up stale records from the database.
	HousekeeperTaskType = "aux:task:housekeeper"
)

// ErrNoRetention is returned when the housekeeper is called without any
// retention settings.
var ErrNoRetention = errors.New("no retention specified")

// HousekeeperPayload represents the payload of the housekeeper task.
type HousekeeperPayload struct {
	// Retention provides the retention configuration of objects.
	Retention []RetentionConfig `yaml:"retention" json:"retention"`
}

// RetentionConfig represents the retention configuration for a given model.
type RetentionConfig struct {
	// Name specifies the model name as registered in
	// [registry.ModelRegistry].
	Name string `yaml:"name" json:"name"`

	// Duration specifies for how long a record is kept after its last
	// update, e.g. 72h. Datapoints and images, which are no longer reported
	// by the provider, are removed after that.
	Duration string `yaml:"duration" json:"duration"`
}

// Validate checks that the retention refers to a known model and a positive
// duration.
func (r RetentionConfig) Validate() (time.Duration, error) {
	if !registry.ModelRegistry.Exists(r.Name) {
		return 0, fmt.Errorf("model %q not found in registry", r.Name)
	}

	d, err := time.ParseDuration(r.Duration)
	if err != nil {
		return 0, fmt.Errorf("invalid retention for %s: %w", r.Name, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("invalid retention for %s: %s", r.Name, r.Duration)
	}

	return d, nil
}

// HandleHousekeeperTask deletes records, which have not been updated within
// their retention.
func HandleHousekeeperTask(ctx context.Context, task *asynq.Task) error {
	var payload HousekeeperPayload
	if err := asynqutils.Unmarshal(task.Payload(), &payload); err != nil {
		return asynqutils.SkipRetry(err)
	}

	if len(payload.Retention) == 0 {
		return asynqutils.SkipRetry(ErrNoRetention)
	}

	durations := make([]time.Duration, 0, len(payload.Retention))
	for _, item := range payload.Retention {
		d, err := item.Validate()
		if err != nil {
			return asynqutils.SkipRetry(err)
		}
		durations = append(durations, d)
	}

	logger := asynqutils.GetLogger(ctx)
	allErrs := make([]error, 0)
	for i, item := range payload.Retention {
		model, _ := registry.ModelRegistry.Get(item.Name)
		past := time.Now().Add(-durations[i])
		out, err := db.DB.NewDelete().
			Model(model).
			Where("updated_at < ?", past).
			Exec(ctx)

		if err != nil {
			// Keep going with the rest of the models
			logger.Error("failed to delete stale records", "name", item.Name, "reason", err)
			allErrs = append(allErrs, err)

			continue
		}

		count, err := out.RowsAffected()
		if err != nil {
			logger.Error("failed to get number of deleted rows", "name", item.Name, "reason", err)
			allErrs = append(allErrs, err)

			continue
		}

		logger.Info("deleted stale records", "name", item.Name, "count", count)
		metric := prometheus.MustNewConstMetric(
			hkDeletedRecordsDesc,
			prometheus.GaugeValue,
			float64(count),
			item.Name,
		)
		key := metrics.Key(HousekeeperTaskType, item.Name)
		metrics.DefaultCollector.AddMetric(key, metric)
	}

	return errors.Join(allErrs...)
}
