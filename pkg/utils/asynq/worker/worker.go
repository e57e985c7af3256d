// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package worker wraps the asynq server used for processing tasks.
package worker

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/hibiken/asynq"

	"github.com/gardener/inventory-bindings/pkg/core/config"
	"github.com/gardener/inventory-bindings/pkg/core/registry"
)

// Option is a function, which configures the [Worker].
type Option func(conf *asynq.Config)

// Worker wraps an [asynq.Server] and [asynq.ServeMux] with additional
// convenience methods for task handlers.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// WithLogLevel is an [Option], which configures the log level of the [Worker].
func WithLogLevel(level asynq.LogLevel) Option {
	opt := func(conf *asynq.Config) {
		conf.LogLevel = level
	}

	return opt
}

// WithErrorHandler is an [Option], which configures the [Worker] to use the
// specified [asynq.ErrorHandler].
func WithErrorHandler(handler asynq.ErrorHandler) Option {
	opt := func(conf *asynq.Config) {
		conf.ErrorHandler = handler
	}

	return opt
}

// WithBaseContext is an [Option], which configures the [Worker] to derive the
// context of task handlers from the given function.
func WithBaseContext(fn func() context.Context) Option {
	opt := func(conf *asynq.Config) {
		conf.BaseContext = fn
	}

	return opt
}

// NewConfig returns the [asynq.Config] for the given [config.WorkerConfig].
func NewConfig(conf config.WorkerConfig, opts ...Option) asynq.Config {
	concurrency := conf.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	queues := conf.Queues
	if len(queues) == 0 {
		queues = map[string]int{
			config.DefaultQueueName: 1,
		}
	}

	asynqConf := asynq.Config{
		Concurrency:    concurrency,
		Queues:         queues,
		StrictPriority: conf.StrictPriority,
	}

	for _, opt := range opts {
		opt(&asynqConf)
	}

	return asynqConf
}

// NewFromConfig creates a new [Worker] based on the provided
// [config.WorkerConfig] spec.
func NewFromConfig(r asynq.RedisClientOpt, conf config.WorkerConfig, opts ...Option) *Worker {
	worker := &Worker{
		server: asynq.NewServer(r, NewConfig(conf, opts...)),
		mux:    asynq.NewServeMux(),
	}

	return worker
}

// UseMiddlewares configures the [Worker] to use the given middlewares.
func (w *Worker) UseMiddlewares(items ...asynq.MiddlewareFunc) {
	w.mux.Use(items...)
}

// Handle registers the handler for the given task name.
func (w *Worker) Handle(name string, handler asynq.Handler) {
	w.mux.Handle(name, handler)
}

// HandlersFromRegistry registers the task handlers from the given registry.
func (w *Worker) HandlersFromRegistry(reg *registry.Registry[string, asynq.Handler]) {
	for _, name := range registry.SortedKeys(reg) {
		handler, ok := reg.Get(name)
		if !ok {
			continue
		}
		slog.Info("registering task", "name", name)
		w.Handle(name, handler)
	}
}

// Run starts the task processing and blocks until an OS signal to exit the
// program is received.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown gracefully shuts down the worker.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}
