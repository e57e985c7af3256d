// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package migrations bundles the SQL migrations for the persisted CloudWatch
// datapoints and Glance images.
package migrations

import (
	"embed"
	"fmt"
	"os"

	"github.com/uptrace/bun/migrate"
)

//go:embed *.sql
var sqlMigrations embed.FS

// Bundled provides the migrations embedded in the binary.
var Bundled = migrate.NewMigrations()

func init() {
	if err := Bundled.Discover(sqlMigrations); err != nil {
		panic(err)
	}
}

// Load returns the migrations from the given directory, or the [Bundled]
// migrations if dir is empty.
func Load(dir string) (*migrate.Migrations, error) {
	if dir == "" {
		return Bundled, nil
	}

	m := migrate.NewMigrations(migrate.WithMigrationsDirectory(dir))
	if err := m.Discover(os.DirFS(dir)); err != nil {
		return nil, fmt.Errorf("cannot discover migrations in %s: %w", dir, err)
	}

	return m, nil
}
