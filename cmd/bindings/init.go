// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	_ "github.com/gardener/inventory-bindings/pkg/auxiliary/tasks"
	_ "github.com/gardener/inventory-bindings/pkg/aws/models"
	_ "github.com/gardener/inventory-bindings/pkg/aws/tasks"
	_ "github.com/gardener/inventory-bindings/pkg/openstack/models"
	_ "github.com/gardener/inventory-bindings/pkg/openstack/tasks"
)
