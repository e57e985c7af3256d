// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/hibiken/asynq"
	"github.com/urfave/cli/v2"
)

// withInspector invokes fn with an [asynq.Inspector] created from the config.
func withInspector(ctx *cli.Context, fn func(inspector *asynq.Inspector) error) error {
	inspector, err := newInspector(getConfig(ctx))
	if err != nil {
		return err
	}
	defer inspector.Close() // nolint: errcheck

	return fn(inspector)
}

// NewQueueCommand returns a new command for interfacing with the task queues.
func NewQueueCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "queue",
		Usage:   "queue operations",
		Aliases: []string{"q"},
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "list queues",
				Aliases: []string{"ls"},
				Action: func(ctx *cli.Context) error {
					return withInspector(ctx, func(inspector *asynq.Inspector) error {
						queues, err := inspector.Queues()
						if err != nil {
							return err
						}

						if len(queues) == 0 {
							return nil
						}

						table := newTableWriter(os.Stdout, []string{"NAME"})
						for _, item := range queues {
							if err := table.Append([]string{item}); err != nil {
								return err
							}
						}

						return table.Render()
					})
				},
			},
			{
				Name:    "info",
				Usage:   "get queue info",
				Aliases: []string{"i"},
				Flags:   []cli.Flag{queueFlag()},
				Action: func(ctx *cli.Context) error {
					return withInspector(ctx, func(inspector *asynq.Inspector) error {
						q, err := inspector.GetQueueInfo(ctx.String("queue"))
						if err != nil {
							return err
						}

						fmt.Printf("%-20s: %s\n", "Name", q.Queue)
						fmt.Printf("%-20s: %d\n", "Memory Usage", q.MemoryUsage)
						fmt.Printf("%-20s: %s\n", "Latency", q.Latency)
						fmt.Printf("%-20s: %d\n", "Size", q.Size)
						fmt.Printf("%-20s: %d\n", "Pending", q.Pending)
						fmt.Printf("%-20s: %d\n", "Active", q.Active)
						fmt.Printf("%-20s: %d\n", "Scheduled", q.Scheduled)
						fmt.Printf("%-20s: %d\n", "Retry", q.Retry)
						fmt.Printf("%-20s: %d\n", "Archived", q.Archived)
						fmt.Printf("%-20s: %d\n", "Completed", q.Completed)
						fmt.Printf("%-20s: %d\n", "Processed (daily)", q.Processed)
						fmt.Printf("%-20s: %d\n", "Failed (daily)", q.Failed)
						fmt.Printf("%-20s: %v\n", "Paused", q.Paused)

						return nil
					})
				},
			},
			{
				Name:    "pause",
				Usage:   "pause a queue",
				Aliases: []string{"p"},
				Flags:   []cli.Flag{queueFlag()},
				Action: func(ctx *cli.Context) error {
					return withInspector(ctx, func(inspector *asynq.Inspector) error {
						return inspector.PauseQueue(ctx.String("queue"))
					})
				},
			},
			{
				Name:    "resume",
				Usage:   "resume a queue",
				Aliases: []string{"r"},
				Flags:   []cli.Flag{queueFlag()},
				Action: func(ctx *cli.Context) error {
					return withInspector(ctx, func(inspector *asynq.Inspector) error {
						return inspector.UnpauseQueue(ctx.String("queue"))
					})
				},
			},
		},
	}

	return cmd
}
