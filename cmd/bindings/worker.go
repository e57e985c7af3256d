// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/urfave/cli/v2"

	asynqclient "github.com/gardener/inventory-bindings/pkg/clients/asynq"
	dbclient "github.com/gardener/inventory-bindings/pkg/clients/db"
	"github.com/gardener/inventory-bindings/pkg/core/config"
	"github.com/gardener/inventory-bindings/pkg/core/registry"
	"github.com/gardener/inventory-bindings/pkg/metrics"
	asynqutils "github.com/gardener/inventory-bindings/pkg/utils/asynq"
	"github.com/gardener/inventory-bindings/pkg/utils/asynq/worker"
)

// NewWorkerCommand returns a new command for interfacing with the workers.
func NewWorkerCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "worker",
		Usage:   "worker operations",
		Aliases: []string{"w"},
		Before: func(ctx *cli.Context) error {
			conf := getConfig(ctx)
			validatorFuncs := []func(c *config.Config) error{
				validateRedisConfig,
				validateDBConfig,
			}

			for _, validator := range validatorFuncs {
				if err := validator(conf); err != nil {
					return err
				}
			}

			return nil
		},
		Subcommands: []*cli.Command{
			{
				Name:    "start",
				Usage:   "start the workers",
				Aliases: []string{"s"},
				Action: func(ctx *cli.Context) error {
					conf := getConfig(ctx)
					logger := slog.Default()

					redisClientOpt, err := newRedisClientOpt(conf)
					if err != nil {
						return err
					}

					// Clients used by the task handlers
					db := newDB(conf)
					defer db.Close() // nolint: errcheck
					dbclient.SetDB(db)

					client := asynq.NewClient(redisClientOpt)
					defer client.Close() // nolint: errcheck
					asynqclient.SetClient(client)

					inspector := asynq.NewInspector(redisClientOpt)
					defer inspector.Close() // nolint: errcheck
					asynqclient.SetInspector(inspector)

					if err := configureAWSClients(ctx.Context, conf); err != nil {
						return err
					}

					if err := configureOpenStackClients(ctx.Context, conf); err != nil {
						return err
					}

					logLevel := asynq.InfoLevel
					if conf.Debug {
						logLevel = asynq.DebugLevel
					}

					errorHandler := func(ctx context.Context, task *asynq.Task, err error) {
						taskID, _ := asynq.GetTaskID(ctx)
						logger.Error(
							"task failed",
							"task_id", taskID,
							"task_name", task.Type(),
							"task_queue", asynqutils.GetQueueName(ctx),
							"reason", err,
						)
					}

					w := worker.NewFromConfig(
						redisClientOpt,
						conf.Worker,
						worker.WithLogLevel(logLevel),
						worker.WithErrorHandler(asynq.ErrorHandlerFunc(errorHandler)),
						worker.WithBaseContext(func() context.Context { return ctx.Context }),
					)
					w.UseMiddlewares(
						asynqutils.NewLoggerMiddleware(logger),
						asynqutils.NewMeasuringMiddleware(),
						asynqutils.NewMetricsMiddleware(),
					)
					w.HandlersFromRegistry(registry.TaskRegistry)

					if conf.Worker.Metrics.Address != "" {
						path := conf.Worker.Metrics.Path
						if path == "" {
							path = config.DefaultMetricsPath
						}

						server := metrics.NewServer(conf.Worker.Metrics.Address, path)
						go func() {
							logger.Info("starting metrics server", "address", server.Addr, "path", path)
							if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
								logger.Error("metrics server failed", "reason", err)
							}
						}()

						defer func() {
							shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
							defer cancel()
							if err := server.Shutdown(shutdownCtx); err != nil {
								logger.Error("failed to shutdown metrics server", "reason", err)
							}
						}()
					}

					return w.Run()
				},
			},
		},
	}

	return cmd
}
