// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorReportsLatestValueOnce(t *testing.T) {
	desc := prometheus.NewDesc("test_images", "Number of images", []string{"project"}, nil)
	c := NewCollector()
	c.AddDesc(desc)

	c.AddMetric(Key("images", "a"), prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, 1, "a"))
	c.AddMetric(Key("images", "a"), prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, 3, "a"))
	c.AddMetric(Key("images", "b"), prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, 2, "b"))

	if c.Len() != 2 {
		t.Fatalf("want 2 pending metrics, got %d", c.Len())
	}

	want := `
# HELP test_images Number of images
# TYPE test_images gauge
test_images{project="a"} 3
test_images{project="b"} 2
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want)); err != nil {
		t.Fatalf("unexpected metrics: %s", err)
	}

	if n := testutil.CollectAndCount(c); n != 0 {
		t.Fatalf("metrics must be dropped after collection, got %d", n)
	}
}

func TestKey(t *testing.T) {
	if got := Key("task", "project", "region"); got != "task/project/region" {
		t.Fatalf("unexpected key %q", got)
	}

	if got := Key("task"); got != "task" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestServer(t *testing.T) {
	TaskSuccessfulTotal.WithLabelValues("test:task", "default").Inc()

	srv := NewServer(":0", "/metrics")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("want status 200, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "inventory_task_successful_total") {
		t.Fatal("task metrics not served")
	}
}
