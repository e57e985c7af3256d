// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/urfave/cli/v2"

	"github.com/gardener/inventory-bindings/pkg/core/config"
	"github.com/gardener/inventory-bindings/pkg/core/registry"
)

// errUnknownTaskState is returned when listing tasks in an unsupported state.
var errUnknownTaskState = errors.New("unknown task state")

// queueFlag returns the flag used for selecting a queue.
func queueFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "queue",
		Aliases: []string{"q"},
		Usage:   "name of queue to use",
		Value:   config.DefaultQueueName,
	}
}

// NewTaskCommand returns a [cli.Command] for interfacing with task-related
// operations.
func NewTaskCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "task",
		Usage:   "task operations",
		Aliases: []string{"t"},
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "list registered tasks",
				Aliases: []string{"ls"},
				Action: func(_ *cli.Context) error {
					for _, name := range registry.SortedKeys(registry.TaskRegistry) {
						fmt.Println(name)
					}

					return nil
				},
			},
			{
				Name:    "enqueue",
				Usage:   "submit a task",
				Aliases: []string{"submit"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "task",
						Aliases:  []string{"t"},
						Usage:    "name of task to enqueue",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "payload",
						Usage: "task payload",
					},
					&cli.PathFlag{
						Name:  "payload-file",
						Usage: "path to a payload file",
					},
					queueFlag(),
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "set timeout for task",
						Value: 30 * time.Minute,
					},
				},
				Action: func(ctx *cli.Context) error {
					taskName := ctx.String("task")
					if !registry.TaskRegistry.Exists(taskName) {
						return fmt.Errorf("task %q not found in registry", taskName)
					}

					var payload []byte
					payloadData := ctx.String("payload")
					payloadFile := ctx.Path("payload-file")
					switch {
					case payloadData != "" && payloadFile != "":
						return errors.New("cannot use --payload and --payload-file at the same time")
					case payloadData != "":
						payload = []byte(payloadData)
					case payloadFile != "":
						data, err := os.ReadFile(filepath.Clean(payloadFile))
						if err != nil {
							return fmt.Errorf("cannot read payload file: %w", err)
						}
						payload = data
					}

					conf := getConfig(ctx)
					client, err := newAsynqClient(conf)
					if err != nil {
						return err
					}
					defer client.Close() // nolint: errcheck

					task := asynq.NewTask(taskName, payload)
					opts := []asynq.Option{
						asynq.Queue(ctx.String("queue")),
						asynq.Timeout(ctx.Duration("timeout")),
					}
					info, err := client.EnqueueContext(ctx.Context, task, opts...)
					if err != nil {
						return fmt.Errorf("cannot enqueue %q task: %w", taskName, err)
					}

					fmt.Printf("%s/%s\n", info.Queue, info.ID)

					return nil
				},
			},
			{
				Name:    "show",
				Usage:   "list tasks in a given state",
				Aliases: []string{"s"},
				Flags: []cli.Flag{
					queueFlag(),
					&cli.StringFlag{
						Name:  "state",
						Usage: "task state, one of active, pending, scheduled, retry, archived or completed",
						Value: asynq.TaskStatePending.String(),
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "page number to retrieve",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "size",
						Usage: "page size to use",
						Value: 50,
					},
				},
				Action: printTasksInState,
			},
			{
				Name:    "inspect",
				Usage:   "inspect a task",
				Aliases: []string{"i"},
				Flags: []cli.Flag{
					queueFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "task id",
						Required: true,
					},
				},
				Action: func(ctx *cli.Context) error {
					conf := getConfig(ctx)
					inspector, err := newInspector(conf)
					if err != nil {
						return err
					}
					defer inspector.Close() // nolint: errcheck

					info, err := inspector.GetTaskInfo(ctx.String("queue"), ctx.String("id"))
					if err != nil {
						return err
					}

					fmt.Printf("%-20s: %s\n", "ID", info.ID)
					fmt.Printf("%-20s: %s\n", "Queue", info.Queue)
					fmt.Printf("%-20s: %s\n", "Type/Name", info.Type)
					fmt.Printf("%-20s: %v\n", "State", info.State)
					fmt.Printf("%-20s: %d/%d\n", "Retry", info.Retried, info.MaxRetry)
					fmt.Printf("%-20s: %s\n", "Timeout", info.Timeout)
					fmt.Printf("%-20s: %s\n", "Last Failed At", timeOrNA(info.LastFailedAt))
					fmt.Printf("%-20s: %s\n", "Next Process At", timeOrNA(info.NextProcessAt))
					fmt.Printf("%-20s: %s\n", "Completed At", timeOrNA(info.CompletedAt))
					fmt.Printf("%-20s: %s\n", "Last Error", info.LastErr)
					fmt.Printf("%-20s: %s\n", "Payload", string(info.Payload))

					return nil
				},
			},
			{
				Name:    "delete",
				Usage:   "delete a task",
				Aliases: []string{"d"},
				Flags: []cli.Flag{
					queueFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "task id",
						Required: true,
					},
				},
				Action: func(ctx *cli.Context) error {
					conf := getConfig(ctx)
					inspector, err := newInspector(conf)
					if err != nil {
						return err
					}
					defer inspector.Close() // nolint: errcheck

					return inspector.DeleteTask(ctx.String("queue"), ctx.String("id"))
				},
			},
		},
	}

	return cmd
}

// timeOrNA formats t, or returns [na] for the zero time.
func timeOrNA(t time.Time) string {
	if t.IsZero() {
		return na
	}

	return t.String()
}

// printTasksInState prints the tasks in the state given by the --state flag.
func printTasksInState(ctx *cli.Context) error {
	conf := getConfig(ctx)
	inspector, err := newInspector(conf)
	if err != nil {
		return err
	}
	defer inspector.Close() // nolint: errcheck

	stateToFunc := map[string]func(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error){
		asynq.TaskStateActive.String():    inspector.ListActiveTasks,
		asynq.TaskStatePending.String():   inspector.ListPendingTasks,
		asynq.TaskStateScheduled.String(): inspector.ListScheduledTasks,
		asynq.TaskStateRetry.String():     inspector.ListRetryTasks,
		asynq.TaskStateArchived.String():  inspector.ListArchivedTasks,
		asynq.TaskStateCompleted.String(): inspector.ListCompletedTasks,
	}

	state := ctx.String("state")
	listFunc, ok := stateToFunc[state]
	if !ok {
		states := make([]string, 0, len(stateToFunc))
		for k := range stateToFunc {
			states = append(states, k)
		}
		slices.Sort(states)

		return fmt.Errorf("%w: %s (supported: %v)", errUnknownTaskState, state, states)
	}

	items, err := listFunc(ctx.String("queue"), asynq.Page(ctx.Int("page")), asynq.PageSize(ctx.Int("size")))
	if err != nil {
		return err
	}

	if len(items) == 0 {
		return nil
	}

	headers := []string{
		"ID",
		"TYPE",
		"RETRIED",
		"IS ORPHANED",
	}
	table := newTableWriter(os.Stdout, headers)
	for _, item := range items {
		row := []string{
			item.ID,
			item.Type,
			fmt.Sprintf("%d/%d", item.Retried, item.MaxRetry),
			strconv.FormatBool(item.IsOrphaned),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}

	return table.Render()
}
