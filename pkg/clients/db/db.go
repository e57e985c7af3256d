// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package db provides the database client used by task handlers.
package db

import (
	"github.com/uptrace/bun"
)

// DB is the database handle used by workers during runtime.
var DB *bun.DB

// SetDB shall be invoked from cli commands to set the database handle used by
// the workers.
func SetDB(db *bun.DB) {
	DB = db
}
