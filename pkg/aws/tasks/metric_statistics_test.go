// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/hibiken/asynq"

	"github.com/gardener/inventory-bindings/pkg/aws/cloudwatch"
	coretasks "github.com/gardener/inventory-bindings/pkg/core/tasks"
	"github.com/gardener/inventory-bindings/pkg/utils/optional"
)

func TestMetricQueryBuild(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		desc           string
		query          MetricQuery
		wantErr        error
		wantStart      time.Time
		wantStatistics []types.Statistic
	}{
		{
			desc:           "defaults",
			query:          MetricQuery{Namespace: "AWS/EC2", MetricName: "CPUUtilization"},
			wantStart:      now.Add(-DefaultLookback),
			wantStatistics: []types.Statistic{types.StatisticAverage},
		},
		{
			desc: "explicit lookback and statistics",
			query: MetricQuery{
				Namespace:  "AWS/EC2",
				MetricName: "CPUUtilization",
				Statistics: []string{"Maximum", "Minimum"},
				Lookback:   "30m",
			},
			wantStart:      now.Add(-30 * time.Minute),
			wantStatistics: []types.Statistic{types.StatisticMaximum, types.StatisticMinimum},
		},
		{
			desc:    "unparsable lookback",
			query:   MetricQuery{Namespace: "AWS/EC2", MetricName: "CPUUtilization", Lookback: "yesterday"},
			wantErr: ErrInvalidLookback,
		},
		{
			desc:    "negative lookback",
			query:   MetricQuery{Namespace: "AWS/EC2", MetricName: "CPUUtilization", Lookback: "-1h"},
			wantErr: ErrInvalidLookback,
		},
		{
			desc:    "missing metric name",
			query:   MetricQuery{Namespace: "AWS/EC2"},
			wantErr: cloudwatch.ErrNoMetricName,
		},
		{
			desc:    "unknown statistic",
			query:   MetricQuery{Namespace: "AWS/EC2", MetricName: "CPUUtilization", Statistics: []string{"p99"}},
			wantErr: cloudwatch.ErrInvalidStatistic,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			query, err := tc.query.Build(now)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}

			if tc.wantErr != nil {
				return
			}

			start, ok := query.StartTime().Get()
			if !ok || !start.Equal(tc.wantStart) {
				t.Fatalf("want start %s, got %s", tc.wantStart, query.StartTime())
			}

			if end, ok := query.EndTime().Get(); !ok || !end.Equal(now) {
				t.Fatalf("want end %s, got %s", now, query.EndTime())
			}

			if got := query.Statistics(); !slices.Equal(got, tc.wantStatistics) {
				t.Fatalf("want statistics %v, got %v", tc.wantStatistics, got)
			}
		})
	}
}

func TestHandleCollectMetricStatisticsTask(t *testing.T) {
	testCases := []struct {
		desc    string
		payload []byte
		wantErr error
	}{
		{
			desc:    "no payload",
			payload: nil,
			wantErr: ErrNoPayload,
		},
		{
			desc:    "invalid query",
			payload: []byte(`{"account_id": "123456789012", "query": {"namespace": "AWS/EC2"}}`),
			wantErr: cloudwatch.ErrNoMetricName,
		},
		{
			desc:    "unknown account",
			payload: []byte("account_id: \"123456789012\"\nquery:\n  namespace: AWS/EC2\n  metric_name: CPUUtilization\n"),
			wantErr: coretasks.ErrClientNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			task := asynq.NewTask(TaskCollectMetricStatistics, tc.payload)
			err := HandleCollectMetricStatisticsTask(context.Background(), task)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}

			if !errors.Is(err, asynq.SkipRetry) {
				t.Fatalf("invalid payloads must not be retried, got %v", err)
			}
		})
	}
}

func TestFanOutWithoutClients(t *testing.T) {
	payload := []byte(`{"query": {"namespace": "AWS/EC2", "metric_name": "CPUUtilization"}}`)
	task := asynq.NewTask(TaskCollectMetricStatistics, payload)

	if err := HandleCollectMetricStatisticsTask(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestToDatapointModels(t *testing.T) {
	query, err := cloudwatch.NewBuilder().
		Namespace("AWS/EC2").
		MetricName("CPUUtilization").
		Dimensions(
			cloudwatch.Dimension{Name: "InstanceId", Value: "i-1"},
			cloudwatch.Dimension{Name: "AutoScalingGroupName", Value: "asg"},
		).
		Statistics(types.StatisticAverage, types.StatisticMaximum).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	result := &cloudwatch.Statistics{
		Datapoints: []cloudwatch.Datapoint{
			{
				Timestamp: ts,
				Unit:      types.StandardUnitPercent,
				Average:   optional.Of(1.5),
				Maximum:   optional.Of(3.0),
			},
		},
	}

	items := toDatapointModels("123456789012", "eu-central-1", query, result)
	if len(items) != 1 {
		t.Fatalf("want 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Dimensions != "AutoScalingGroupName=asg,InstanceId=i-1" {
		t.Fatalf("unexpected dimensions %q", item.Dimensions)
	}

	if item.Period != cloudwatch.DefaultPeriod || item.Unit != "Percent" || !item.Timestamp.Equal(ts) {
		t.Fatalf("unexpected item %+v", item)
	}

	if item.Average == nil || *item.Average != 1.5 || item.Maximum == nil || *item.Maximum != 3.0 {
		t.Fatalf("unexpected statistics %+v", item)
	}

	if item.Sum != nil || item.Minimum != nil || item.SampleCount != nil {
		t.Fatal("statistics not requested must be NULL")
	}
}
