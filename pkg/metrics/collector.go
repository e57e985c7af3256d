// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gardener/inventory-bindings/pkg/core/registry"
)

// DefaultCollector is the default [Collector] for metrics.
var DefaultCollector = NewCollector()

// Collector is a [prometheus.Collector], which reports the latest value of a
// metric only once.
//
// Tasks report values such as the number of collected images or datapoints
// per scope. A [prometheus.GaugeVec] keeps reporting a label set after the
// scope disappeared, e.g. a project was deleted or a credential was rotated
// out of the configuration. Metrics added to the Collector are dropped after
// they were scraped, so that only values reported since the last scrape are
// exposed.
type Collector struct {
	mu          sync.Mutex
	descriptors []*prometheus.Desc
	reg         *registry.Registry[string, prometheus.Metric]
}

var _ prometheus.Collector = &Collector{}

// NewCollector creates a new [Collector].
func NewCollector() *Collector {
	c := &Collector{
		descriptors: make([]*prometheus.Desc, 0),
		reg:         registry.New[string, prometheus.Metric](),
	}

	return c
}

// AddDesc adds the given [prometheus.Desc] to the [Collector].
func (c *Collector) AddDesc(items ...*prometheus.Desc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.descriptors = append(c.descriptors, items...)
}

// AddMetric adds the metric under the given key, replacing any metric which
// was added with the same key since the last scrape. Callers derive the key
// from the metric name and its label values, e.g. via [Key].
func (c *Collector) AddMetric(key string, metric prometheus.Metric) {
	c.reg.Overwrite(key, metric)
}

// Len returns the number of metrics pending for the next scrape.
func (c *Collector) Len() int {
	return c.reg.Length()
}

// Describe implements the [prometheus.Collector] interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, desc := range c.descriptors {
		ch <- desc
	}
}

// Collect implements the [prometheus.Collector] interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, key := range c.reg.Keys() {
		metric, ok := c.reg.Get(key)
		if !ok {
			continue
		}
		ch <- metric
		c.reg.Unregister(key)
	}
}

// Key derives an idempotency key for [Collector.AddMetric] from the given
// items.
func Key(item string, rest ...string) string {
	items := append([]string{item}, rest...)

	return strings.Join(items, "/")
}
