// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package tasks provides the OpenStack task handlers.
package tasks

import (
	"github.com/hibiken/asynq"

	"github.com/gardener/inventory-bindings/pkg/core/registry"
)

// init registers our task handlers and periodic tasks with the registries.
func init() {
	registry.TaskRegistry.MustRegister(TaskCollectImages, asynq.HandlerFunc(HandleCollectImagesTask))
}
