// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package version provides the version of the binaries.
package version

// Version is set at build time via
// -ldflags "-X github.com/gardener/inventory-bindings/pkg/version.Version=..."
var Version = "v0.0.0-dev"
