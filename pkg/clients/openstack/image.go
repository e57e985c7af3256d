// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package openstack

import (
	"github.com/gophercloud/gophercloud/v2"

	"github.com/gardener/inventory-bindings/pkg/core/registry"
)

// ImageClientset provides the registry of OpenStack Image (Glance) API clients,
// keyed by the scope of the client.
var ImageClientset = registry.New[ClientScope, Client[*gophercloud.ServiceClient]]()
