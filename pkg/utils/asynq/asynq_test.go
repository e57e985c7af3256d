// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package asynq

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gardener/inventory-bindings/pkg/core/config"
	"github.com/gardener/inventory-bindings/pkg/metrics"
)

func TestSkipRetry(t *testing.T) {
	base := errors.New("invalid payload")
	err := SkipRetry(base)

	if !errors.Is(err, base) || !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("error must wrap both errors: %v", err)
	}
}

func TestUnmarshal(t *testing.T) {
	type payload struct {
		AccountID string `json:"account_id" yaml:"account_id"`
	}

	testCases := []struct {
		desc    string
		data    string
		want    string
		wantErr bool
	}{
		{desc: "json payload", data: `{"account_id": "123"}`, want: "123"},
		{desc: "yaml payload", data: "account_id: \"456\"\n", want: "456"},
		{desc: "invalid payload", data: "{account_id: [", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var p payload
			err := Unmarshal([]byte(tc.data), &p)
			if tc.wantErr != (err != nil) {
				t.Fatalf("want error %t, got %v", tc.wantErr, err)
			}

			if !tc.wantErr && p.AccountID != tc.want {
				t.Fatalf("want %q, got %q", tc.want, p.AccountID)
			}
		})
	}
}

func TestGetLogger(t *testing.T) {
	if GetLogger(context.Background()) != slog.Default() {
		t.Fatal("want default logger without logger in context")
	}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)
	if GetLogger(ctx) != logger {
		t.Fatal("want logger from context")
	}
}

func TestGetQueueName(t *testing.T) {
	if got := GetQueueName(context.Background()); got != config.DefaultQueueName {
		t.Fatalf("want %q, got %q", config.DefaultQueueName, got)
	}
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := asynq.HandlerFunc(func(ctx context.Context, _ *asynq.Task) error {
		GetLogger(ctx).Info("processing")

		return nil
	})

	mw := NewLoggerMiddleware(logger)(handler)
	if err := mw.ProcessTask(context.Background(), asynq.NewTask("test:task", nil)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if !strings.Contains(buf.String(), "task_name=test:task") {
		t.Fatalf("task name missing from log event: %q", buf.String())
	}
}

func TestMetricsMiddleware(t *testing.T) {
	testCases := []struct {
		desc    string
		name    string
		err     error
		success float64
		skipped float64
		failed  float64
	}{
		{desc: "successful task", name: "test:ok", err: nil, success: 1},
		{desc: "skipped task", name: "test:skip", err: SkipRetry(errors.New("bad payload")), skipped: 1},
		{desc: "failed task", name: "test:fail", err: errors.New("boom"), failed: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			handler := asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
				return tc.err
			})

			mw := NewMetricsMiddleware()(handler)
			_ = mw.ProcessTask(context.Background(), asynq.NewTask(tc.name, nil))

			queue := config.DefaultQueueName
			if got := testutil.ToFloat64(metrics.TaskSuccessfulTotal.WithLabelValues(tc.name, queue)); got != tc.success {
				t.Fatalf("want %v successful, got %v", tc.success, got)
			}
			if got := testutil.ToFloat64(metrics.TaskSkippedTotal.WithLabelValues(tc.name, queue)); got != tc.skipped {
				t.Fatalf("want %v skipped, got %v", tc.skipped, got)
			}
			if got := testutil.ToFloat64(metrics.TaskFailedTotal.WithLabelValues(tc.name, queue)); got != tc.failed {
				t.Fatalf("want %v failed, got %v", tc.failed, got)
			}
		})
	}
}

func TestOutcomeOf(t *testing.T) {
	testCases := []struct {
		desc string
		err  error
		want Outcome
	}{
		{desc: "no error", err: nil, want: OutcomeSucceeded},
		{desc: "skip retry", err: SkipRetry(errors.New("bad payload")), want: OutcomeSkipped},
		{desc: "plain error", err: errors.New("boom"), want: OutcomeFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := OutcomeOf(tc.err); got != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}
