// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package vault provides the registry of Vault API clients, keyed by the
// server name from the configuration.
package vault

import (
	"github.com/gardener/inventory-bindings/pkg/core/registry"
	apiclient "github.com/gardener/inventory-bindings/pkg/vault/client"
)

// Clientset provides the registry of Vault API clients.
var Clientset = registry.New[string, *apiclient.Client]()
