// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package asynq provides various asynq utilities
package asynq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hibiken/asynq"

	"github.com/gardener/inventory-bindings/pkg/core/config"
)

// SkipRetry wraps the provided error with [asynq.SkipRetry] in order to signal
// asynq that the task should not retried.
func SkipRetry(err error) error {
	return fmt.Errorf("%w (%w)", err, asynq.SkipRetry)
}

// Unmarshal unmarshals the given payload data by first attempting to unmarshal
// using [json.Unmarshal], and if not successful then falls back to
// [yaml.Unmarshal].
func Unmarshal(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	return yaml.Unmarshal(data, v)
}

// loggerKey is the key used to store a [slog.Logger] in a [context.Context]
type loggerKey struct{}

// GetLogger returns the [slog.Logger] instance from the provided context, if
// found, or [slog.Default] otherwise.
func GetLogger(ctx context.Context) *slog.Logger {
	value := ctx.Value(loggerKey{})
	logger, ok := value.(*slog.Logger)
	if !ok {
		return slog.Default()
	}

	return logger
}

// WithLogger returns a copy of ctx, which carries the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetQueueName returns the name of the queue of the task being processed, or
// [config.DefaultQueueName] when called outside of a task handler.
func GetQueueName(ctx context.Context) string {
	queue, ok := asynq.GetQueueName(ctx)
	if !ok || queue == "" {
		return config.DefaultQueueName
	}

	return queue
}

// NewRedisClientOptFromConfig returns the [asynq.RedisClientOpt] for the given
// [config.RedisConfig].
func NewRedisClientOptFromConfig(conf config.RedisConfig) (asynq.RedisClientOpt, error) {
	opt := asynq.RedisClientOpt{
		Addr:     conf.Endpoint,
		Username: conf.Username,
	}

	if conf.PasswordFile != "" {
		data, err := os.ReadFile(conf.PasswordFile)
		if err != nil {
			return asynq.RedisClientOpt{}, fmt.Errorf("read redis password: %w", err)
		}
		opt.Password = strings.TrimSpace(string(data))
	}

	return opt, nil
}
