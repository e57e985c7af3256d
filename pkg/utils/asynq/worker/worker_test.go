// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package worker

import (
	"runtime"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/gardener/inventory-bindings/pkg/core/config"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		desc            string
		conf            config.WorkerConfig
		opts            []Option
		wantConcurrency int
		wantQueues      map[string]int
		wantLogLevel    asynq.LogLevel
	}{
		{
			desc:            "defaults",
			conf:            config.WorkerConfig{},
			wantConcurrency: runtime.NumCPU(),
			wantQueues:      map[string]int{config.DefaultQueueName: 1},
		},
		{
			desc: "explicit settings",
			conf: config.WorkerConfig{
				Concurrency: 3,
				Queues:      map[string]int{"aws": 2, "openstack": 1},
			},
			opts:            []Option{WithLogLevel(asynq.DebugLevel)},
			wantConcurrency: 3,
			wantQueues:      map[string]int{"aws": 2, "openstack": 1},
			wantLogLevel:    asynq.DebugLevel,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := NewConfig(tc.conf, tc.opts...)
			if got.Concurrency != tc.wantConcurrency {
				t.Fatalf("want concurrency %d, got %d", tc.wantConcurrency, got.Concurrency)
			}

			if len(got.Queues) != len(tc.wantQueues) {
				t.Fatalf("want queues %v, got %v", tc.wantQueues, got.Queues)
			}
			for name, prio := range tc.wantQueues {
				if got.Queues[name] != prio {
					t.Fatalf("want queues %v, got %v", tc.wantQueues, got.Queues)
				}
			}

			if got.LogLevel != tc.wantLogLevel {
				t.Fatalf("want log level %v, got %v", tc.wantLogLevel, got.LogLevel)
			}
		})
	}
}
