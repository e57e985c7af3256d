// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/urfave/cli/v2"

	"github.com/gardener/inventory-bindings/pkg/aws/cloudwatch"
)

// parseDimensions parses the dimensions given in the `name=value' form.
func parseDimensions(items []string) ([]cloudwatch.Dimension, error) {
	dimensions := make([]cloudwatch.Dimension, 0, len(items))
	for _, item := range items {
		d, err := cloudwatch.ParseDimension(item)
		if err != nil {
			return nil, err
		}
		dimensions = append(dimensions, d)
	}

	return dimensions, nil
}

// regionOptFns returns the client options for overriding the region.
func regionOptFns(region string) []func(o *awscloudwatch.Options) {
	if region == "" {
		return nil
	}

	return []func(o *awscloudwatch.Options){
		func(o *awscloudwatch.Options) {
			o.Region = region
		},
	}
}

// formatValue formats a statistic value for the datapoints table.
func formatValue(dp cloudwatch.Datapoint, s types.Statistic) string {
	value, ok := dp.Value(s).Get()
	if !ok {
		return na
	}

	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NewCloudWatchCommand returns a new command for querying AWS CloudWatch.
func NewCloudWatchCommand() *cli.Command {
	credentialsFlag := &cli.StringFlag{
		Name:     "credentials",
		Usage:    "named AWS credentials to use",
		Required: true,
	}
	regionFlag := &cli.StringFlag{
		Name:  "region",
		Usage: "region to query, defaults to the configured region",
	}

	cmd := &cli.Command{
		Name:    "cloudwatch",
		Usage:   "AWS CloudWatch operations",
		Aliases: []string{"cw"},
		Before: func(ctx *cli.Context) error {
			return validateAWSConfig(getConfig(ctx))
		},
		Subcommands: []*cli.Command{
			{
				Name:    "get-statistics",
				Usage:   "get statistics for a metric",
				Aliases: []string{"stats"},
				Flags: []cli.Flag{
					credentialsFlag,
					regionFlag,
					&cli.StringFlag{
						Name:     "namespace",
						Usage:    "namespace of the metric",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "metric-name",
						Usage:    "name of the metric",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "dimension",
						Usage: "dimension in the name=value form, may be repeated",
					},
					&cli.StringSliceFlag{
						Name:  "statistic",
						Usage: "statistic to return, may be repeated",
						Value: cli.NewStringSlice(string(types.StatisticAverage)),
					},
					&cli.IntFlag{
						Name:  "period",
						Usage: "granularity of the datapoints in seconds",
						Value: int(cloudwatch.DefaultPeriod),
					},
					&cli.DurationFlag{
						Name:  "lookback",
						Usage: "query the datapoints within this duration until now",
						Value: time.Hour,
					},
					&cli.StringFlag{
						Name:  "unit",
						Usage: "unit of the metric",
					},
				},
				Action: func(ctx *cli.Context) error {
					dimensions, err := parseDimensions(ctx.StringSlice("dimension"))
					if err != nil {
						return err
					}

					statistics := make([]types.Statistic, 0)
					for _, s := range ctx.StringSlice("statistic") {
						statistics = append(statistics, types.Statistic(s))
					}

					end := time.Now().UTC()
					builder := cloudwatch.NewBuilder().
						Namespace(ctx.String("namespace")).
						MetricName(ctx.String("metric-name")).
						Dimensions(dimensions...).
						Statistics(statistics...).
						Period(int32(ctx.Int("period"))). // nolint: gosec
						StartTime(end.Add(-ctx.Duration("lookback"))).
						EndTime(end)

					if unit := ctx.String("unit"); unit != "" {
						builder.Unit(types.StandardUnit(unit))
					}

					query, err := builder.Build()
					if err != nil {
						return err
					}

					conf := getConfig(ctx)
					client, err := newCloudWatchClient(ctx.Context, conf, ctx.String("credentials"))
					if err != nil {
						return err
					}

					result, err := cloudwatch.GetStatistics(ctx.Context, client.Client, query, regionOptFns(ctx.String("region"))...)
					if err != nil {
						return err
					}

					fmt.Printf("%s (%d datapoints)\n", result.Label, len(result.Datapoints))
					if len(result.Datapoints) == 0 {
						return nil
					}

					headers := []string{"TIMESTAMP", "UNIT"}
					for _, s := range query.Statistics() {
						headers = append(headers, strings.ToUpper(string(s)))
					}

					table := newTableWriter(os.Stdout, headers)
					for _, dp := range result.Datapoints {
						row := []string{
							dp.Timestamp.Format(time.RFC3339),
							string(dp.Unit),
						}
						for _, s := range query.Statistics() {
							row = append(row, formatValue(dp, s))
						}
						if err := table.Append(row); err != nil {
							return err
						}
					}

					return table.Render()
				},
			},
			{
				Name:    "list-metrics",
				Usage:   "list metrics",
				Aliases: []string{"ls"},
				Flags: []cli.Flag{
					credentialsFlag,
					regionFlag,
					&cli.StringFlag{
						Name:  "namespace",
						Usage: "filter by namespace",
					},
					&cli.StringFlag{
						Name:  "metric-name",
						Usage: "filter by metric name",
					},
					&cli.StringSliceFlag{
						Name:  "dimension",
						Usage: "filter by dimension in the name=value form, may be repeated",
					},
					&cli.BoolFlag{
						Name:  "recently-active",
						Usage: "list only metrics, which were active in the past three hours",
					},
				},
				Action: func(ctx *cli.Context) error {
					dimensions, err := parseDimensions(ctx.StringSlice("dimension"))
					if err != nil {
						return err
					}

					conf := getConfig(ctx)
					client, err := newCloudWatchClient(ctx.Context, conf, ctx.String("credentials"))
					if err != nil {
						return err
					}

					opts := cloudwatch.ListMetricsOptions{
						Namespace:      ctx.String("namespace"),
						MetricName:     ctx.String("metric-name"),
						Dimensions:     dimensions,
						RecentlyActive: ctx.Bool("recently-active"),
					}

					items, err := cloudwatch.ListMetrics(ctx.Context, client.Client, opts, regionOptFns(ctx.String("region"))...)
					if err != nil {
						return err
					}

					if len(items) == 0 {
						return nil
					}

					table := newTableWriter(os.Stdout, []string{"NAMESPACE", "METRIC", "DIMENSIONS"})
					for _, item := range items {
						row := []string{
							item.Namespace,
							item.MetricName,
							cloudwatch.DimensionsKey(item.Dimensions),
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
