// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package models

import (
	"time"

	"github.com/uptrace/bun"

	coremodels "github.com/gardener/inventory-bindings/pkg/core/models"
	"github.com/gardener/inventory-bindings/pkg/core/registry"
)

// MetricDatapoint represents a datapoint of an AWS CloudWatch metric. Only the
// requested statistics are set.
type MetricDatapoint struct {
	bun.BaseModel `bun:"table:aws_cloudwatch_datapoint"`
	coremodels.Model

	AccountID   string    `bun:"account_id,notnull,unique:aws_cloudwatch_datapoint_key"`
	Region      string    `bun:"region,notnull,unique:aws_cloudwatch_datapoint_key"`
	Namespace   string    `bun:"namespace,notnull,unique:aws_cloudwatch_datapoint_key"`
	MetricName  string    `bun:"metric_name,notnull,unique:aws_cloudwatch_datapoint_key"`
	Dimensions  string    `bun:"dimensions,notnull,unique:aws_cloudwatch_datapoint_key"`
	Period      int32     `bun:"period,notnull,unique:aws_cloudwatch_datapoint_key"`
	Timestamp   time.Time `bun:"timestamp,notnull,unique:aws_cloudwatch_datapoint_key"`
	Unit        string    `bun:"unit,notnull"`
	SampleCount *float64  `bun:"sample_count"`
	Average     *float64  `bun:"average"`
	Sum         *float64  `bun:"sum"`
	Minimum     *float64  `bun:"minimum"`
	Maximum     *float64  `bun:"maximum"`
}

func init() {
	// Register the models with the default registry
	registry.ModelRegistry.MustRegister("aws:model:cloudwatch_datapoint", &MetricDatapoint{})
}
