// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gardener/inventory-bindings/pkg/metrics"
)

var (
	// imagesDesc is the descriptor for a metric,
	// which tracks the number of collected OpenStack Glance Images
	imagesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metrics.Namespace, "", "openstack_glance_images"),
		"A gauge which tracks the number of collected OpenStack Glance Images",
		[]string{"project", "domain", "region"},
		nil,
	)

	// imagePagesDesc is the descriptor for a metric,
	// which tracks the number of pages fetched while collecting images
	imagePagesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metrics.Namespace, "", "openstack_glance_image_pages"),
		"A gauge which tracks the number of pages fetched from the Glance API",
		[]string{"project", "domain", "region"},
		nil,
	)
)

// init registers the metric descriptors with the [metrics.DefaultCollector].
func init() {
	metrics.DefaultCollector.AddDesc(
		imagesDesc,
		imagePagesDesc,
	)
}
