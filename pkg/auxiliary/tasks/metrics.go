// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gardener/inventory-bindings/pkg/metrics"
)

var (
	// hkDeletedRecordsDesc describes the number of stale records removed
	// by the housekeeper during its last run, per model.
	hkDeletedRecordsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metrics.Namespace, "", "housekeeper_deleted_records"),
		"Gauge which tracks the number of deleted records by the housekeeper",
		[]string{"model_name"},
		nil,
	)

	// queueDeletedTasksDesc describes the number of tasks removed from a
	// queue by the queue management tasks, per queue and task state.
	queueDeletedTasksDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metrics.Namespace, "", "queue_deleted_tasks"),
		"Gauge which tracks the number of tasks deleted from a queue",
		[]string{"queue", "state"},
		nil,
	)
)

func init() {
	metrics.DefaultCollector.AddDesc(
		hkDeletedRecordsDesc,
		queueDeletedTasksDesc,
	)
}
