// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

// NewDatabaseCommand returns a new command for interfacing with the database.
func NewDatabaseCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "database",
		Usage:   "database operations",
		Aliases: []string{"db"},
		Before: func(ctx *cli.Context) error {
			return validateDBConfig(getConfig(ctx))
		},
		Subcommands: []*cli.Command{
			{
				Name:    "init",
				Usage:   "initialize migration tables",
				Aliases: []string{"i"},
				Action: func(ctx *cli.Context) error {
					return withMigrator(ctx, func(m *migrate.Migrator) error {
						return m.Init(ctx.Context)
					})
				},
			},
			{
				Name:    "migrate",
				Usage:   "apply pending migrations",
				Aliases: []string{"m"},
				Action: func(ctx *cli.Context) error {
					return withLockedMigrator(ctx, func(m *migrate.Migrator) error {
						group, err := m.Migrate(ctx.Context)
						if err != nil {
							return err
						}

						if group.IsZero() {
							fmt.Println("database is up to date")

							return nil
						}

						fmt.Printf("database migrated to %s\n", group)

						return nil
					})
				},
			},
			{
				Name:    "rollback",
				Usage:   "rollback last migration group",
				Aliases: []string{"r"},
				Action: func(ctx *cli.Context) error {
					return withLockedMigrator(ctx, func(m *migrate.Migrator) error {
						group, err := m.Rollback(ctx.Context)
						if err != nil {
							return err
						}

						if group.IsZero() {
							fmt.Println("there are no migration groups for rollback")

							return nil
						}

						fmt.Printf("rolled back %s\n", group)

						return nil
					})
				},
			},
			{
				Name:    "create",
				Usage:   "create a new migration",
				Aliases: []string{"c"},
				Action: func(ctx *cli.Context) error {
					name := strings.Join(ctx.Args().Slice(), "_")
					if name == "" {
						return errors.New("must specify migration description")
					}

					return withMigrator(ctx, func(m *migrate.Migrator) error {
						files, err := m.CreateTxSQLMigrations(ctx.Context, name)
						if err != nil {
							return err
						}

						for _, item := range files {
							fmt.Println(item.Path)
						}

						return nil
					})
				},
			},
			{
				Name:    "status",
				Usage:   "display migration status",
				Aliases: []string{"s"},
				Action: func(ctx *cli.Context) error {
					return withMigrator(ctx, func(m *migrate.Migrator) error {
						ms, err := m.MigrationsWithStatus(ctx.Context)
						if err != nil {
							return err
						}

						pending := ms.Unapplied()
						fmt.Printf("pending migration(s): %d\n", len(pending))
						fmt.Printf("database version: %s\n", ms.LastGroup())

						if len(pending) == 0 {
							fmt.Println("database is up-to-date")
						} else {
							fmt.Println("database is out-of-date")
						}

						return nil
					})
				},
			},
			{
				Name:    "list",
				Usage:   "display the list of migrations",
				Aliases: []string{"ls"},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pending",
						Usage: "display pending migrations only",
					},
				},
				Action: func(ctx *cli.Context) error {
					return withMigrator(ctx, func(m *migrate.Migrator) error {
						ms, err := m.MigrationsWithStatus(ctx.Context)
						if err != nil {
							return err
						}

						items := ms.Applied()
						if ctx.Bool("pending") {
							items = ms.Unapplied()
						}

						if len(items) == 0 {
							return nil
						}

						return tabulateMigrations(items)
					})
				},
			},
		},
	}

	return cmd
}

// withMigrator connects to the database and invokes fn with a migrator for it.
func withMigrator(ctx *cli.Context, fn func(m *migrate.Migrator) error) error {
	conf := getConfig(ctx)
	db := newDB(conf)
	defer db.Close() // nolint: errcheck

	migrator, err := newMigrator(conf, db)
	if err != nil {
		return err
	}

	return fn(migrator)
}

// withLockedMigrator is like [withMigrator], but holds the migration lock
// while fn is running.
func withLockedMigrator(ctx *cli.Context, fn func(m *migrate.Migrator) error) error {
	return withMigrator(ctx, func(m *migrate.Migrator) error {
		if err := m.Lock(ctx.Context); err != nil {
			return err
		}

		defer func() {
			if err := m.Unlock(context.Background()); err != nil {
				slog.Error("failed to unlock migrations", "reason", err)
			}
		}()

		return fn(m)
	})
}

// tabulateMigrations renders the given migration items as a table.
func tabulateMigrations(items migrate.MigrationSlice) error {
	headers := []string{
		"ID",
		"NAME",
		"COMMENT",
		"GROUP-ID",
		"MIGRATED-AT",
	}
	table := newTableWriter(os.Stdout, headers)

	for _, item := range items {
		id := na
		groupID := na
		migratedAt := na

		if item.ID > 0 {
			id = strconv.FormatInt(item.ID, 10)
		}

		if item.GroupID > 0 {
			groupID = strconv.FormatInt(item.GroupID, 10)
		}

		if !item.MigratedAt.IsZero() {
			migratedAt = item.MigratedAt.String()
		}

		row := []string{
			id,
			item.Name,
			item.Comment,
			groupID,
			migratedAt,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}

	return table.Render()
}
