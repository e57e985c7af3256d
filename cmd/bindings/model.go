// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"text/template"

	"github.com/urfave/cli/v2"

	"github.com/gardener/inventory-bindings/pkg/core/registry"
)

// errNoQueryTemplate is returned by the query sub-command, when no
// [text/template] body was specified.
var errNoQueryTemplate = errors.New("no query template specified")

// NewModelCommand returns a new command for interfacing with the models.
func NewModelCommand() *cli.Command {
	cmd := &cli.Command{
		Name:    "model",
		Usage:   "model operations",
		Aliases: []string{"m"},
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "list registered models",
				Aliases: []string{"ls"},
				Action: func(_ *cli.Context) error {
					for _, name := range registry.SortedKeys(registry.ModelRegistry) {
						fmt.Println(name)
					}

					return nil
				},
			},
			{
				Name:    "query",
				Usage:   "query data for a given model",
				Aliases: []string{"q"},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "model",
						Usage:    "model name to query",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "template",
						Usage: "template body to render",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "fetch up to this number of records",
						Value: 0,
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "fetch records starting from this offset",
						Value: 0,
					},
				},
				Before: func(ctx *cli.Context) error {
					return validateDBConfig(getConfig(ctx))
				},
				Action: func(ctx *cli.Context) error {
					templateBody := ctx.String("template")
					if templateBody == "" {
						return errNoQueryTemplate
					}

					tmpl, err := template.New("bindings").Parse(templateBody)
					if err != nil {
						return err
					}

					modelName := ctx.String("model")
					model, ok := registry.ModelRegistry.Get(modelName)
					if !ok {
						return fmt.Errorf("model %q not found in registry", modelName)
					}

					offset := ctx.Int("offset")
					if offset < 0 {
						return fmt.Errorf("invalid offset %d", offset)
					}

					limit := ctx.Int("limit")
					if limit < 0 {
						return fmt.Errorf("invalid limit %d", limit)
					}

					db := newDB(getConfig(ctx))
					defer db.Close() // nolint: errcheck

					// Scan into a new slice of the registered model type,
					// which is then passed to the template.
					modelType := reflect.TypeOf(model).Elem()
					items := reflect.New(reflect.SliceOf(modelType))
					query := db.NewSelect().Model(items.Interface()).Offset(offset)
					if limit > 0 {
						query = query.Limit(limit)
					}

					if err := query.Scan(ctx.Context); err != nil {
						return err
					}

					return tmpl.Execute(os.Stdout, items.Elem().Interface())
				},
			},
		},
	}

	return cmd
}
