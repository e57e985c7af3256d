// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package cloudwatch

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

func newValidBuilder() *Builder {
	return NewBuilder().
		MetricName("CPUUtilization").
		Namespace("AWS/EC2")
}

func TestBuildValidation(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		desc    string
		builder *Builder
		wantErr error
	}{
		{
			desc:    "minimal valid query",
			builder: newValidBuilder(),
			wantErr: nil,
		},
		{
			desc:    "missing metric name",
			builder: NewBuilder().Namespace("AWS/EC2"),
			wantErr: ErrNoMetricName,
		},
		{
			desc:    "missing namespace",
			builder: NewBuilder().MetricName("CPUUtilization"),
			wantErr: ErrNoNamespace,
		},
		{
			desc:    "dimension without value",
			builder: newValidBuilder().Dimension(Dimension{Name: "InstanceId"}),
			wantErr: ErrInvalidDimension,
		},
		{
			desc:    "unknown statistic",
			builder: newValidBuilder().Statistic(types.Statistic("Median")),
			wantErr: ErrInvalidStatistic,
		},
		{
			desc:    "zero period",
			builder: newValidBuilder().Period(0),
			wantErr: ErrInvalidPeriod,
		},
		{
			desc:    "end time before start time",
			builder: newValidBuilder().StartTime(start).EndTime(start.Add(-time.Hour)),
			wantErr: ErrInvalidTimeRange,
		},
		{
			desc:    "only start time",
			builder: newValidBuilder().StartTime(start),
			wantErr: nil,
		},
		{
			desc: "all five statistics",
			builder: newValidBuilder().Statistics(
				types.StatisticSampleCount,
				types.StatisticAverage,
				types.StatisticSum,
				types.StatisticMinimum,
				types.StatisticMaximum,
			),
			wantErr: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			query, err := tc.builder.Build()
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}

			if tc.wantErr != nil {
				if !errors.Is(err, ErrInvalidQuery) {
					t.Fatalf("validation errors must wrap ErrInvalidQuery, got %v", err)
				}
				if query != nil {
					t.Fatal("failed build must not return a query")
				}
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	query, err := newValidBuilder().Build()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if query.Period() != DefaultPeriod || query.Period() != 60 {
		t.Fatalf("want default period 60, got %d", query.Period())
	}

	if query.StartTime().IsPresent() || query.EndTime().IsPresent() {
		t.Fatal("start and end time must be absent by default")
	}

	if query.Unit().IsPresent() {
		t.Fatal("unit must be absent by default")
	}

	if len(query.Dimensions()) != 0 || len(query.Statistics()) != 0 {
		t.Fatal("dimensions and statistics must be empty by default")
	}
}

func TestDimensionsAreAdditive(t *testing.T) {
	first := Dimension{Name: "InstanceId", Value: "i-1"}
	second := Dimension{Name: "AutoScalingGroupName", Value: "asg"}

	query, err := newValidBuilder().
		Dimension(first).
		Dimensions(second, first).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	got := query.Dimensions()
	if len(got) != 2 {
		t.Fatalf("want 2 dimensions, got %v", got)
	}

	for _, d := range []Dimension{first, second} {
		if !slices.Contains(got, d) {
			t.Fatalf("dimension %s missing from %v", d, got)
		}
	}
}

func TestStatisticsAreIdempotent(t *testing.T) {
	query, err := newValidBuilder().
		Statistic(types.StatisticAverage).
		Statistic(types.StatisticAverage).
		Statistics(types.StatisticMaximum, types.StatisticAverage).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	want := []types.Statistic{types.StatisticAverage, types.StatisticMaximum}
	if got := query.Statistics(); !slices.Equal(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestTooManyStatistics(t *testing.T) {
	// Duplicates do not count towards the limit
	builder := newValidBuilder()
	for range 3 {
		builder.Statistics(types.Statistic("").Values()...)
	}

	if _, err := builder.Build(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	builder.Statistic(types.Statistic("p99"))
	if _, err := builder.Build(); !errors.Is(err, ErrTooManyStatistics) {
		t.Fatalf("want ErrTooManyStatistics, got %v", err)
	}
}

func TestBuildReturnsSnapshot(t *testing.T) {
	builder := newValidBuilder().Dimension(Dimension{Name: "InstanceId", Value: "i-1"})
	query, err := builder.Build()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	builder.
		Dimension(Dimension{Name: "InstanceId", Value: "i-2"}).
		Statistic(types.StatisticSum).
		MetricName("NetworkIn").
		Period(300)

	if len(query.Dimensions()) != 1 || len(query.Statistics()) != 0 {
		t.Fatal("built query changed after further builder calls")
	}

	if query.MetricName() != "CPUUtilization" || query.Period() != 60 {
		t.Fatal("built query changed after further builder calls")
	}

	// Mutating returned slices must not leak into the query
	dims := query.Dimensions()
	dims[0].Value = "mutated"
	if query.Dimensions()[0].Value != "i-1" {
		t.Fatal("query dimensions are mutable through getter")
	}
}

func TestInput(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	query, err := newValidBuilder().
		Dimension(Dimension{Name: "InstanceId", Value: "i-1"}).
		StartTime(start).
		EndTime(end).
		Period(300).
		Statistic(types.StatisticAverage).
		Unit(types.StandardUnitPercent).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	input := query.Input()
	if aws.ToString(input.MetricName) != "CPUUtilization" {
		t.Fatalf("unexpected metric name %q", aws.ToString(input.MetricName))
	}

	if aws.ToString(input.Namespace) != "AWS/EC2" {
		t.Fatalf("unexpected namespace %q", aws.ToString(input.Namespace))
	}

	if aws.ToInt32(input.Period) != 300 {
		t.Fatalf("unexpected period %d", aws.ToInt32(input.Period))
	}

	if !aws.ToTime(input.StartTime).Equal(start) || !aws.ToTime(input.EndTime).Equal(end) {
		t.Fatalf("unexpected time range %v - %v", input.StartTime, input.EndTime)
	}

	if len(input.Dimensions) != 1 || aws.ToString(input.Dimensions[0].Name) != "InstanceId" || aws.ToString(input.Dimensions[0].Value) != "i-1" {
		t.Fatalf("unexpected dimensions %v", input.Dimensions)
	}

	if !slices.Equal(input.Statistics, []types.Statistic{types.StatisticAverage}) {
		t.Fatalf("unexpected statistics %v", input.Statistics)
	}

	if input.Unit != types.StandardUnitPercent {
		t.Fatalf("unexpected unit %q", input.Unit)
	}
}

func TestInputOmitsAbsentFields(t *testing.T) {
	query, err := newValidBuilder().Build()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	input := query.Input()
	if input.StartTime != nil || input.EndTime != nil {
		t.Fatal("absent times must not be sent")
	}

	if input.Unit != "" {
		t.Fatalf("absent unit must not be sent, got %q", input.Unit)
	}

	if input.Dimensions != nil {
		t.Fatalf("no dimensions must not be sent, got %v", input.Dimensions)
	}
}
