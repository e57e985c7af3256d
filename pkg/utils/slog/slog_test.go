// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package slog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/gardener/inventory-bindings/pkg/core/config"
)

func TestNewFromConfig(t *testing.T) {
	testCases := []struct {
		desc    string
		conf    config.LoggingConfig
		wantErr error
	}{
		{desc: "defaults", conf: config.LoggingConfig{}, wantErr: nil},
		{desc: "json debug", conf: config.LoggingConfig{Level: "debug", Format: "json"}, wantErr: nil},
		{desc: "invalid level", conf: config.LoggingConfig{Level: "verbose"}, wantErr: ErrInvalidLogLevel},
		{desc: "invalid format", conf: config.LoggingConfig{Format: "xml"}, wantErr: ErrInvalidLogFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewFromConfig(&buf, tc.conf)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}

			if tc.wantErr == nil && logger == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestDefaultAttributes(t *testing.T) {
	var buf bytes.Buffer
	conf := config.LoggingConfig{
		Format:     "json",
		Level:      "warn",
		Attributes: map[string]string{"env": "test"},
	}

	logger, err := NewFromConfig(&buf, conf)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	logger.Info("dropped")
	logger.Warn("kept", "key", "value")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 log event, got %d: %q", len(lines), buf.String())
	}

	var event map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("invalid json log event: %s", err)
	}

	if event["env"] != "test" || event["key"] != "value" || event["msg"] != "kept" {
		t.Fatalf("unexpected log event %v", event)
	}
}
