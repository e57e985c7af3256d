// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"github.com/gardener/inventory-bindings/pkg/core/registry"
)

// CloudWatchClientset provides the registry of CloudWatch clients, keyed by
// AWS Account ID.
var CloudWatchClientset = registry.New[string, *Client[*cloudwatch.Client]]()
