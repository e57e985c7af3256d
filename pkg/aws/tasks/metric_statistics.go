// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gardener/inventory-bindings/pkg/aws/cloudwatch"
	"github.com/gardener/inventory-bindings/pkg/aws/models"
	asynqclient "github.com/gardener/inventory-bindings/pkg/clients/asynq"
	awsclients "github.com/gardener/inventory-bindings/pkg/clients/aws"
	"github.com/gardener/inventory-bindings/pkg/clients/db"
	coretasks "github.com/gardener/inventory-bindings/pkg/core/tasks"
	"github.com/gardener/inventory-bindings/pkg/metrics"
	asynqutils "github.com/gardener/inventory-bindings/pkg/utils/asynq"
)

const (
	// TaskCollectMetricStatistics is the name of the task for collecting
	// AWS CloudWatch metric statistics.
	TaskCollectMetricStatistics = "aws:task:collect-metric-statistics"

	// DefaultLookback is the time range for collecting metric statistics,
	// when the query does not specify one.
	DefaultLookback = time.Hour
)

// MetricQuery describes the metric statistics to collect. The time range of
// the query ends at the time the task is processed.
type MetricQuery struct {
	// Namespace is the namespace of the metric, e.g. AWS/EC2.
	Namespace string `json:"namespace" yaml:"namespace"`

	// MetricName is the name of the metric, e.g. CPUUtilization.
	MetricName string `json:"metric_name" yaml:"metric_name"`

	// Dimensions narrow the time series of the metric.
	Dimensions []cloudwatch.Dimension `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`

	// Statistics are the statistics to collect. Average is collected, if
	// none are specified.
	Statistics []string `json:"statistics,omitempty" yaml:"statistics,omitempty"`

	// Period is the granularity of datapoints in seconds.
	Period int32 `json:"period,omitempty" yaml:"period,omitempty"`

	// Unit is the optional unit of the metric.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Lookback is the duration of the time range, e.g. 30m.
	Lookback string `json:"lookback,omitempty" yaml:"lookback,omitempty"`
}

// Build returns the [cloudwatch.GetMetricStatistics] query for the time range
// ending at now.
func (q MetricQuery) Build(now time.Time) (*cloudwatch.GetMetricStatistics, error) {
	lookback := DefaultLookback
	if q.Lookback != "" {
		d, err := time.ParseDuration(q.Lookback)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidLookback, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidLookback, q.Lookback)
		}
		lookback = d
	}

	builder := cloudwatch.NewBuilder().
		Namespace(q.Namespace).
		MetricName(q.MetricName).
		Dimensions(q.Dimensions...).
		StartTime(now.Add(-lookback)).
		EndTime(now)

	if len(q.Statistics) == 0 {
		builder.Statistic(types.StatisticAverage)
	}
	for _, s := range q.Statistics {
		builder.Statistic(types.Statistic(s))
	}

	if q.Period != 0 {
		builder.Period(q.Period)
	}

	if q.Unit != "" {
		builder.Unit(types.StandardUnit(q.Unit))
	}

	return builder.Build()
}

// CollectMetricStatisticsPayload represents the payload, which specifies
// the metric statistics to collect and where to collect them from.
type CollectMetricStatisticsPayload struct {
	// AccountID specifies the AWS Account ID, which is associated with a
	// registered client. Tasks for all registered clients are enqueued,
	// if empty.
	AccountID string `json:"account_id" yaml:"account_id"`

	// Region overrides the region of the client, if set.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Query specifies the metric statistics to collect.
	Query MetricQuery `json:"query" yaml:"query"`
}

// NewCollectMetricStatisticsTask creates a new [asynq.Task] for collecting
// metric statistics using the given payload.
func NewCollectMetricStatisticsTask(payload CollectMetricStatisticsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskCollectMetricStatistics, data), nil
}

// HandleCollectMetricStatisticsTask handles the task for collecting AWS
// CloudWatch metric statistics.
func HandleCollectMetricStatisticsTask(ctx context.Context, t *asynq.Task) error {
	data := t.Payload()
	if data == nil {
		return asynqutils.SkipRetry(ErrNoPayload)
	}

	var payload CollectMetricStatisticsPayload
	if err := asynqutils.Unmarshal(data, &payload); err != nil {
		return asynqutils.SkipRetry(err)
	}

	// Validate the query before enqueueing any tasks
	if _, err := payload.Query.Build(time.Now()); err != nil {
		return asynqutils.SkipRetry(err)
	}

	// If we were called without an account id, then we enqueue tasks for
	// collecting the statistics from all configured clients.
	if payload.AccountID == "" {
		return enqueueCollectMetricStatistics(ctx, payload)
	}

	return collectMetricStatistics(ctx, payload)
}

// enqueueCollectMetricStatistics enqueues tasks for collecting metric
// statistics from all configured CloudWatch clients.
func enqueueCollectMetricStatistics(ctx context.Context, payload CollectMetricStatisticsPayload) error {
	logger := asynqutils.GetLogger(ctx)

	if awsclients.CloudWatchClientset.Length() == 0 {
		logger.Warn("no AWS CloudWatch clients found")

		return nil
	}

	queue := asynqutils.GetQueueName(ctx)

	return awsclients.CloudWatchClientset.Range(func(accountID string, _ *awsclients.Client[*awscloudwatch.Client]) error {
		p := payload
		p.AccountID = accountID
		task, err := NewCollectMetricStatisticsTask(p)
		if err != nil {
			logger.Error(
				"failed to create task",
				"account_id", accountID,
				"reason", err,
			)

			return err
		}

		info, err := asynqclient.Client.Enqueue(task, asynq.Queue(queue))
		if err != nil {
			logger.Error(
				"failed to enqueue task",
				"type", task.Type(),
				"account_id", accountID,
				"reason", err,
			)

			return err
		}

		logger.Info(
			"enqueued task",
			"type", task.Type(),
			"id", info.ID,
			"queue", info.Queue,
			"account_id", accountID,
		)

		return nil
	})
}

// collectMetricStatistics collects the metric statistics using the client
// associated with the account id in the given payload.
func collectMetricStatistics(ctx context.Context, payload CollectMetricStatisticsPayload) error {
	logger := asynqutils.GetLogger(ctx)

	client, ok := awsclients.CloudWatchClientset.Get(payload.AccountID)
	if !ok {
		return asynqutils.SkipRetry(coretasks.ClientNotFound("cloudwatch", payload.AccountID))
	}

	region := payload.Region
	if region == "" {
		region = client.Region
	}

	query, err := payload.Query.Build(time.Now())
	if err != nil {
		return asynqutils.SkipRetry(err)
	}

	logger.Info(
		"collecting AWS CloudWatch metric statistics",
		"account_id", payload.AccountID,
		"region", region,
		"namespace", query.Namespace(),
		"metric_name", query.MetricName(),
	)

	var count int64
	defer func() {
		metric := prometheus.MustNewConstMetric(
			datapointsDesc,
			prometheus.GaugeValue,
			float64(count),
			payload.AccountID,
			region,
			query.Namespace(),
			query.MetricName(),
		)
		key := metrics.Key(
			TaskCollectMetricStatistics,
			payload.AccountID,
			region,
			query.Namespace(),
			query.MetricName(),
			cloudwatch.DimensionsKey(query.Dimensions()),
		)
		metrics.DefaultCollector.AddMetric(key, metric)
	}()

	var optFns []func(o *awscloudwatch.Options)
	if payload.Region != "" {
		optFns = append(optFns, func(o *awscloudwatch.Options) {
			o.Region = payload.Region
		})
	}

	result, err := cloudwatch.GetStatistics(ctx, client.Client, query, optFns...)
	if err != nil {
		logger.Error(
			"could not get metric statistics",
			"account_id", payload.AccountID,
			"region", region,
			"reason", err,
		)

		return err
	}

	items := toDatapointModels(payload.AccountID, region, query, result)
	if len(items) == 0 {
		return nil
	}

	out, err := db.DB.NewInsert().
		Model(&items).
		On("CONFLICT (account_id, region, namespace, metric_name, dimensions, period, timestamp) DO UPDATE").
		Set("unit = EXCLUDED.unit").
		Set("sample_count = EXCLUDED.sample_count").
		Set("average = EXCLUDED.average").
		Set("sum = EXCLUDED.sum").
		Set("minimum = EXCLUDED.minimum").
		Set("maximum = EXCLUDED.maximum").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id").
		Exec(ctx)

	if err != nil {
		logger.Error(
			"could not insert datapoints into db",
			"account_id", payload.AccountID,
			"region", region,
			"reason", err,
		)

		return err
	}

	count, err = out.RowsAffected()
	if err != nil {
		return err
	}

	logger.Info(
		"populated aws cloudwatch datapoints",
		"account_id", payload.AccountID,
		"region", region,
		"namespace", query.Namespace(),
		"metric_name", query.MetricName(),
		"count", count,
	)

	return nil
}

// toDatapointModels converts the statistics into [models.MetricDatapoint]
// items.
func toDatapointModels(accountID, region string, query *cloudwatch.GetMetricStatistics, result *cloudwatch.Statistics) []models.MetricDatapoint {
	dimensions := cloudwatch.DimensionsKey(query.Dimensions())
	items := make([]models.MetricDatapoint, 0, len(result.Datapoints))
	for _, dp := range result.Datapoints {
		item := models.MetricDatapoint{
			AccountID:   accountID,
			Region:      region,
			Namespace:   query.Namespace(),
			MetricName:  query.MetricName(),
			Dimensions:  dimensions,
			Period:      query.Period(),
			Timestamp:   dp.Timestamp,
			Unit:        string(dp.Unit),
			SampleCount: dp.SampleCount.Pointer(),
			Average:     dp.Average.Pointer(),
			Sum:         dp.Sum.Pointer(),
			Minimum:     dp.Minimum.Pointer(),
			Maximum:     dp.Maximum.Pointer(),
		}
		items = append(items, item)
	}

	return items
}
