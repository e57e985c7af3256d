// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package cloudwatch

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/gardener/inventory-bindings/pkg/utils/optional"
)

// MetricStatisticsAPI is the subset of the CloudWatch API used to get metric
// statistics.
type MetricStatisticsAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// Datapoint is a single datapoint of a metric. Only the requested statistics
// are present.
type Datapoint struct {
	Timestamp   time.Time
	Unit        types.StandardUnit
	SampleCount optional.Value[float64]
	Average     optional.Value[float64]
	Sum         optional.Value[float64]
	Minimum     optional.Value[float64]
	Maximum     optional.Value[float64]
}

// Value returns the value of the given statistic.
func (d Datapoint) Value(s types.Statistic) optional.Value[float64] {
	switch s {
	case types.StatisticSampleCount:
		return d.SampleCount
	case types.StatisticAverage:
		return d.Average
	case types.StatisticSum:
		return d.Sum
	case types.StatisticMinimum:
		return d.Minimum
	case types.StatisticMaximum:
		return d.Maximum
	default:
		return optional.None[float64]()
	}
}

// Statistics is the result of a [GetMetricStatistics] query.
type Statistics struct {
	// Label describes the metric.
	Label string

	// Datapoints are the datapoints of the metric in ascending order of
	// their timestamp.
	Datapoints []Datapoint
}

// GetStatistics executes the given query against the CloudWatch API.
func GetStatistics(ctx context.Context, api MetricStatisticsAPI, query *GetMetricStatistics, optFns ...func(*cloudwatch.Options)) (*Statistics, error) {
	out, err := api.GetMetricStatistics(ctx, query.Input(), optFns...)
	if err != nil {
		return nil, fmt.Errorf("get statistics for %s/%s: %w", query.Namespace(), query.MetricName(), err)
	}

	result := &Statistics{
		Label:      aws.ToString(out.Label),
		Datapoints: make([]Datapoint, 0, len(out.Datapoints)),
	}

	for _, dp := range out.Datapoints {
		result.Datapoints = append(result.Datapoints, Datapoint{
			Timestamp:   aws.ToTime(dp.Timestamp),
			Unit:        dp.Unit,
			SampleCount: optional.FromPointer(dp.SampleCount),
			Average:     optional.FromPointer(dp.Average),
			Sum:         optional.FromPointer(dp.Sum),
			Minimum:     optional.FromPointer(dp.Minimum),
			Maximum:     optional.FromPointer(dp.Maximum),
		})
	}

	// CloudWatch does not return datapoints in any particular order
	sort.SliceStable(result.Datapoints, func(i, j int) bool {
		return result.Datapoints[i].Timestamp.Before(result.Datapoints[j].Timestamp)
	})

	return result, nil
}

// Metric identifies a metric known to CloudWatch.
type Metric struct {
	Namespace  string
	MetricName string
	Dimensions []Dimension
}

// ListMetricsOptions specifies the filters for listing metrics. Empty fields do
// not filter.
type ListMetricsOptions struct {
	Namespace      string
	MetricName     string
	Dimensions     []Dimension
	RecentlyActive bool
}

// Input returns the [cloudwatch.ListMetricsInput] for the options.
func (o ListMetricsOptions) Input() *cloudwatch.ListMetricsInput {
	input := &cloudwatch.ListMetricsInput{}
	if o.Namespace != "" {
		input.Namespace = aws.String(o.Namespace)
	}

	if o.MetricName != "" {
		input.MetricName = aws.String(o.MetricName)
	}

	for _, d := range o.Dimensions {
		filter := types.DimensionFilter{Name: aws.String(d.Name)}
		if d.Value != "" {
			filter.Value = aws.String(d.Value)
		}
		input.Dimensions = append(input.Dimensions, filter)
	}

	if o.RecentlyActive {
		input.RecentlyActive = types.RecentlyActivePt3h
	}

	return input
}

// ListMetrics returns the metrics matching the given options from all pages.
func ListMetrics(ctx context.Context, api cloudwatch.ListMetricsAPIClient, opts ListMetricsOptions, optFns ...func(*cloudwatch.Options)) ([]Metric, error) {
	paginator := cloudwatch.NewListMetricsPaginator(
		api,
		opts.Input(),
		func(o *cloudwatch.ListMetricsPaginatorOptions) {
			o.StopOnDuplicateToken = true
		},
	)

	items := make([]Metric, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx, optFns...)
		if err != nil {
			return nil, fmt.Errorf("list metrics: %w", err)
		}

		for _, m := range page.Metrics {
			item := Metric{
				Namespace:  aws.ToString(m.Namespace),
				MetricName: aws.ToString(m.MetricName),
				Dimensions: make([]Dimension, 0, len(m.Dimensions)),
			}
			for _, d := range m.Dimensions {
				item.Dimensions = append(item.Dimensions, Dimension{
					Name:  aws.ToString(d.Name),
					Value: aws.ToString(d.Value),
				})
			}
			items = append(items, item)
		}
	}

	return items, nil
}

// DimensionsKey returns a canonical representation of the given dimensions,
// which does not depend on their order.
func DimensionsKey(dimensions []Dimension) string {
	parts := make([]string, 0, len(dimensions))
	for _, d := range dimensions {
		parts = append(parts, d.String())
	}
	slices.Sort(parts)

	return strings.Join(parts, ",")
}

// ParseDimension parses a dimension in the `name=value' form.
func ParseDimension(s string) (Dimension, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" || value == "" {
		return Dimension{}, fmt.Errorf("%w: %q", ErrInvalidDimension, s)
	}

	return Dimension{Name: name, Value: value}, nil
}
