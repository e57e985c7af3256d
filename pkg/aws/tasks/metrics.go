// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gardener/inventory-bindings/pkg/metrics"
)

var (
	// datapointsDesc is the descriptor for a metric, which tracks the
	// number of collected CloudWatch datapoints.
	datapointsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metrics.Namespace, "", "aws_cloudwatch_datapoints"),
		"A gauge which tracks the number of collected AWS CloudWatch datapoints",
		[]string{"account_id", "region", "namespace", "metric_name"},
		nil,
	)
)

// init registers the metric descriptors with the [metrics.DefaultCollector].
func init() {
	metrics.DefaultCollector.AddDesc(
		datapointsDesc,
	)
}
