// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package cloudwatch provides options and helpers for querying AWS CloudWatch
// metric statistics.
package cloudwatch

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/gardener/inventory-bindings/pkg/utils/optional"
)

const (
	// DefaultPeriod is the default granularity in seconds of the returned
	// datapoints.
	DefaultPeriod int32 = 60

	// MaxStatistics is the maximum number of statistics, which can be
	// requested by a single query.
	MaxStatistics = 5
)

// ErrInvalidQuery is the base error for invalid metric statistics queries.
var ErrInvalidQuery = errors.New("invalid metric statistics query")

var (
	// ErrNoMetricName is returned when the query does not specify a metric
	// name.
	ErrNoMetricName = fmt.Errorf("%w: no metric name specified", ErrInvalidQuery)

	// ErrNoNamespace is returned when the query does not specify a
	// namespace.
	ErrNoNamespace = fmt.Errorf("%w: no namespace specified", ErrInvalidQuery)

	// ErrInvalidDimension is returned when a dimension has an empty name or
	// value.
	ErrInvalidDimension = fmt.Errorf("%w: invalid dimension", ErrInvalidQuery)

	// ErrInvalidStatistic is returned for statistics unknown to CloudWatch.
	ErrInvalidStatistic = fmt.Errorf("%w: invalid statistic", ErrInvalidQuery)

	// ErrTooManyStatistics is returned when more than [MaxStatistics]
	// statistics are requested.
	ErrTooManyStatistics = fmt.Errorf("%w: too many statistics", ErrInvalidQuery)

	// ErrInvalidPeriod is returned when the period is not positive.
	ErrInvalidPeriod = fmt.Errorf("%w: invalid period", ErrInvalidQuery)

	// ErrInvalidTimeRange is returned when the end time is not after the
	// start time.
	ErrInvalidTimeRange = fmt.Errorf("%w: end time must be after start time", ErrInvalidQuery)
)

// Dimension is a name/value pair, which narrows the metric time series
// targeted by a query.
type Dimension struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// String implements the [fmt.Stringer] interface.
func (d Dimension) String() string {
	return d.Name + "=" + d.Value
}

// GetMetricStatistics specifies the statistics to get for a metric. Values are
// created by a [Builder] and are immutable.
type GetMetricStatistics struct {
	dimensions []Dimension
	endTime    optional.Value[time.Time]
	metricName string
	namespace  string
	period     int32
	startTime  optional.Value[time.Time]
	statistics []types.Statistic
	unit       optional.Value[types.StandardUnit]
}

// Dimensions returns the set of dimensions of the query.
func (q *GetMetricStatistics) Dimensions() []Dimension {
	return slices.Clone(q.dimensions)
}

// EndTime returns the exclusive end of the queried time range.
func (q *GetMetricStatistics) EndTime() optional.Value[time.Time] {
	return q.endTime
}

// MetricName returns the name of the metric.
func (q *GetMetricStatistics) MetricName() string {
	return q.metricName
}

// Namespace returns the namespace of the metric.
func (q *GetMetricStatistics) Namespace() string {
	return q.namespace
}

// Period returns the granularity in seconds of the returned datapoints.
func (q *GetMetricStatistics) Period() int32 {
	return q.period
}

// StartTime returns the inclusive start of the queried time range.
func (q *GetMetricStatistics) StartTime() optional.Value[time.Time] {
	return q.startTime
}

// Statistics returns the set of requested statistics.
func (q *GetMetricStatistics) Statistics() []types.Statistic {
	return slices.Clone(q.statistics)
}

// Unit returns the unit of the metric.
func (q *GetMetricStatistics) Unit() optional.Value[types.StandardUnit] {
	return q.unit
}

// Input returns the [cloudwatch.GetMetricStatisticsInput] for the query.
func (q *GetMetricStatistics) Input() *cloudwatch.GetMetricStatisticsInput {
	input := &cloudwatch.GetMetricStatisticsInput{
		MetricName: aws.String(q.metricName),
		Namespace:  aws.String(q.namespace),
		Period:     aws.Int32(q.period),
		StartTime:  q.startTime.Pointer(),
		EndTime:    q.endTime.Pointer(),
		Statistics: slices.Clone(q.statistics),
		Unit:       q.unit.OrElse(""),
	}

	if len(q.dimensions) > 0 {
		input.Dimensions = make([]types.Dimension, 0, len(q.dimensions))
		for _, d := range q.dimensions {
			input.Dimensions = append(input.Dimensions, types.Dimension{
				Name:  aws.String(d.Name),
				Value: aws.String(d.Value),
			})
		}
	}

	return input
}

// Builder creates [GetMetricStatistics] values. Calls for dimensions and
// statistics are additive. A Builder must not be used concurrently.
type Builder struct {
	dimensions []Dimension
	endTime    optional.Value[time.Time]
	metricName string
	namespace  string
	period     int32
	startTime  optional.Value[time.Time]
	statistics []types.Statistic
	unit       optional.Value[types.StandardUnit]
}

// NewBuilder returns a new [Builder] with the default period.
func NewBuilder() *Builder {
	return &Builder{
		dimensions: make([]Dimension, 0),
		period:     DefaultPeriod,
		statistics: make([]types.Statistic, 0),
	}
}

// Dimension adds a dimension describing qualities of the metric.
func (b *Builder) Dimension(d Dimension) *Builder {
	b.dimensions = appendUnique(b.dimensions, d)

	return b
}

// Dimensions adds the dimensions describing qualities of the metric.
func (b *Builder) Dimensions(items ...Dimension) *Builder {
	for _, d := range items {
		b.Dimension(d)
	}

	return b
}

// EndTime sets the time stamp for the last datapoint to return. The value is
// exclusive.
func (b *Builder) EndTime(t time.Time) *Builder {
	b.endTime = optional.Of(t)

	return b
}

// MetricName sets the name of the metric.
func (b *Builder) MetricName(name string) *Builder {
	b.metricName = name

	return b
}

// Namespace sets the namespace of the metric.
func (b *Builder) Namespace(namespace string) *Builder {
	b.namespace = namespace

	return b
}

// Period sets the granularity in seconds of the returned datapoints.
func (b *Builder) Period(period int32) *Builder {
	b.period = period

	return b
}

// StartTime sets the time stamp for the first datapoint to return. The value
// is inclusive.
func (b *Builder) StartTime(t time.Time) *Builder {
	b.startTime = optional.Of(t)

	return b
}

// Statistic adds a statistic to return. Up to [MaxStatistics] statistics may be
// requested.
func (b *Builder) Statistic(s types.Statistic) *Builder {
	b.statistics = appendUnique(b.statistics, s)

	return b
}

// Statistics adds the statistics to return.
func (b *Builder) Statistics(items ...types.Statistic) *Builder {
	for _, s := range items {
		b.Statistic(s)
	}

	return b
}

// Unit sets the unit of the metric.
func (b *Builder) Unit(unit types.StandardUnit) *Builder {
	b.unit = optional.Of(unit)

	return b
}

// Build validates the builder settings and returns a new [GetMetricStatistics].
// The returned value does not change on further calls to the builder.
func (b *Builder) Build() (*GetMetricStatistics, error) {
	if b.metricName == "" {
		return nil, ErrNoMetricName
	}

	if b.namespace == "" {
		return nil, ErrNoNamespace
	}

	for _, d := range b.dimensions {
		if d.Name == "" || d.Value == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDimension, d.String())
		}
	}

	if len(b.statistics) > MaxStatistics {
		return nil, fmt.Errorf("%w: %d requested, at most %d allowed", ErrTooManyStatistics, len(b.statistics), MaxStatistics)
	}

	knownStatistics := types.Statistic("").Values()
	for _, s := range b.statistics {
		if !slices.Contains(knownStatistics, s) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatistic, s)
		}
	}

	if b.period <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeriod, b.period)
	}

	start, hasStart := b.startTime.Get()
	end, hasEnd := b.endTime.Get()
	if hasStart && hasEnd && !end.After(start) {
		return nil, ErrInvalidTimeRange
	}

	query := &GetMetricStatistics{
		dimensions: slices.Clone(b.dimensions),
		endTime:    b.endTime,
		metricName: b.metricName,
		namespace:  b.namespace,
		period:     b.period,
		startTime:  b.startTime,
		statistics: slices.Clone(b.statistics),
		unit:       b.unit,
	}

	return query, nil
}

// appendUnique appends item to items, unless already present. It keeps the
// order in which items were first seen.
func appendUnique[T comparable](items []T, item T) []T {
	if slices.Contains(items, item) {
		return items
	}

	return append(items, item)
}
