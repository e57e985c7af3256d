// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/urfave/cli/v2"

	"github.com/gardener/inventory-bindings/pkg/core/config"
	"github.com/gardener/inventory-bindings/pkg/core/registry"
)

// NewSchedulerCommand returns a new command for interfacing with the scheduler.
func NewSchedulerCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "scheduler",
		Usage:   "scheduler operations",
		Aliases: []string{"s"},
		Before: func(ctx *cli.Context) error {
			return validateRedisConfig(getConfig(ctx))
		},
		Subcommands: []*cli.Command{
			{
				Name:    "start",
				Usage:   "start the scheduler",
				Aliases: []string{"s"},
				Action: func(ctx *cli.Context) error {
					conf := getConfig(ctx)
					scheduler, err := newScheduler(conf)
					if err != nil {
						return err
					}

					defaultQueue := conf.Scheduler.DefaultQueue
					if defaultQueue == "" {
						defaultQueue = config.DefaultQueueName
					}

					for _, job := range conf.Scheduler.Jobs {
						if !registry.TaskRegistry.Exists(job.Name) {
							return fmt.Errorf("periodic job refers to unknown task %q", job.Name)
						}

						task := asynq.NewTask(job.Name, []byte(job.Payload))
						queue := defaultQueue
						if job.Queue != "" {
							queue = job.Queue
						}

						id, err := scheduler.Register(job.Spec, task, asynq.Queue(queue))
						if err != nil {
							return err
						}

						slog.Info(
							"periodic task registered",
							"id", id,
							"name", task.Type(),
							"spec", job.Spec,
							"desc", job.Desc,
							"queue", queue,
						)
					}

					return scheduler.Run()
				},
			},
			{
				Name:    "jobs",
				Usage:   "list periodic jobs",
				Aliases: []string{"j"},
				Action: func(ctx *cli.Context) error {
					conf := getConfig(ctx)
					inspector, err := newInspector(conf)
					if err != nil {
						return err
					}
					defer inspector.Close() // nolint: errcheck

					items, err := inspector.SchedulerEntries()
					if err != nil {
						return err
					}

					if len(items) == 0 {
						return nil
					}

					headers := []string{
						"ID",
						"SPEC",
						"TYPE",
						"PREV",
						"NEXT",
						"OPTS",
					}

					table := newTableWriter(os.Stdout, headers)
					for _, item := range items {
						prev := item.Prev.String()
						if item.Prev.IsZero() {
							prev = na
						}

						opts := make([]string, 0, len(item.Opts))
						for _, opt := range item.Opts {
							opts = append(opts, opt.String())
						}

						row := []string{
							item.ID,
							item.Spec,
							item.Task.Type(),
							prev,
							fmt.Sprintf("In %s", time.Until(item.Next).Round(time.Second)),
							strings.Join(opts, ", "),
						}
						if err := table.Append(row); err != nil {
							return err
						}
					}

					return table.Render()
				},
			},
		},
	}

	return cmd
}

// newScheduler creates a new [asynq.Scheduler] from the provided config.
func newScheduler(conf *config.Config) (*asynq.Scheduler, error) {
	redisClientOpt, err := newRedisClientOpt(conf)
	if err != nil {
		return nil, err
	}

	postEnqueueFunc := func(info *asynq.TaskInfo, err error) {
		if err != nil {
			slog.Error("failed to enqueue task", "reason", err)

			return
		}

		slog.Info("enqueued task", "id", info.ID, "name", info.Type, "queue", info.Queue)
	}

	opts := &asynq.SchedulerOpts{
		PostEnqueueFunc: postEnqueueFunc,
	}

	return asynq.NewScheduler(redisClientOpt, opts), nil
}
