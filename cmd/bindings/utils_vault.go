// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	vaultclients "github.com/gardener/inventory-bindings/pkg/clients/vault"
	"github.com/gardener/inventory-bindings/pkg/core/config"
	apiclient "github.com/gardener/inventory-bindings/pkg/vault/client"
)

// configureVaultClients creates the Vault API clients and registers them.
// Servers already registered are skipped. The auth tokens are kept alive
// until ctx is done.
func configureVaultClients(ctx context.Context, conf *config.Config) error {
	if !conf.Vault.IsEnabled {
		return nil
	}

	for _, name := range slices.Sorted(maps.Keys(conf.Vault.Servers)) {
		if vaultclients.Clientset.Exists(name) {
			continue
		}

		serverConf := conf.Vault.Servers[name]
		c, err := apiclient.NewFromConfig(&serverConf)
		if err != nil {
			return fmt.Errorf("vault: cannot configure client for %s: %w", name, err)
		}

		if err := c.ManageAuthTokenLifetime(ctx); err != nil {
			return fmt.Errorf("vault: cannot manage auth token lifetime for %s: %w", name, err)
		}

		vaultclients.Clientset.Overwrite(name, c)
		slog.Info("configured vault client", "name", name, "address", c.Address())
	}

	return nil
}
