// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	openstackclients "github.com/gardener/inventory-bindings/pkg/clients/openstack"
	"github.com/gardener/inventory-bindings/pkg/core/pagination"
	"github.com/gardener/inventory-bindings/pkg/openstack/glance"
)

// NewGlanceCommand returns a new command for querying the OpenStack Image
// service.
func NewGlanceCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "glance",
		Usage:   "OpenStack Glance operations",
		Aliases: []string{"image"},
		Before: func(ctx *cli.Context) error {
			return validateOpenStackConfig(getConfig(ctx))
		},
		Subcommands: []*cli.Command{
			{
				Name:    "list-images",
				Usage:   "list images",
				Aliases: []string{"ls"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "credentials",
						Usage:    "named OpenStack credentials to use",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "filter by image name",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "filter by image status",
					},
					&cli.StringFlag{
						Name:  "disk-format",
						Usage: "filter by disk format",
					},
					&cli.StringFlag{
						Name:  "container-format",
						Usage: "filter by container format",
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "number of images per page, defaults to the configured page size",
					},
					&cli.IntFlag{
						Name:  "max-pages",
						Usage: "stop after fetching this number of pages, zero fetches all",
					},
				},
				Action: func(ctx *cli.Context) error {
					conf := getConfig(ctx)
					pageSize := conf.OpenStack.Services.Image.PageSize
					if ctx.IsSet("page-size") {
						pageSize = ctx.Int("page-size")
					}

					opts := glance.ListOptions{
						Limit:           pageSize,
						Name:            ctx.String("name"),
						Status:          ctx.String("status"),
						DiskFormat:      ctx.String("disk-format"),
						ContainerFormat: ctx.String("container-format"),
					}
					if err := opts.Validate(); err != nil {
						return err
					}

					if err := configureVaultClients(ctx.Context, conf); err != nil {
						return err
					}

					client, err := newImageClient(ctx.Context, conf, ctx.String("credentials"))
					if err != nil {
						return err
					}

					resolver := func(openstackclients.ClientScope) (*glance.ImageAPI, error) {
						return glance.NewImageAPI(client.Client), nil
					}

					pager := glance.ListAllInDetail(
						resolver,
						client.ClientScope,
						opts,
						pagination.WithStopOnDuplicateMarker(),
					)

					headers := []string{
						"ID",
						"NAME",
						"STATUS",
						"DISK",
						"CONTAINER",
						"SIZE",
						"PUBLIC",
						"UPDATED-AT",
					}
					table := newTableWriter(os.Stdout, headers)

					maxPages := ctx.Int("max-pages")
					err = pager.EachPage(ctx.Context, func(page *pagination.Page[glance.ImageDetails]) (bool, error) {
						for _, item := range page.Items {
							row := []string{
								item.ID,
								item.Name,
								item.Status,
								item.DiskFormat,
								item.ContainerFormat,
								strconv.FormatInt(item.Size, 10),
								strconv.FormatBool(item.IsPublic),
								item.UpdatedAt.Format(time.RFC3339),
							}
							if err := table.Append(row); err != nil {
								return false, err
							}
						}

						return maxPages == 0 || pager.Fetches() < maxPages, nil
					})
					if err != nil {
						return err
					}

					if err := table.Render(); err != nil {
						return err
					}

					fmt.Printf("fetched %d page(s) for %s\n", pager.Fetches(), client.ClientScope)

					return nil
				},
			},
		},
	}

	return cmd
}
