// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"database/sql"
	"errors"
	"io"

	"github.com/hibiken/asynq"
	"github.com/olekukonko/tablewriter"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"

	"github.com/gardener/inventory-bindings/internal/pkg/migrations"
	"github.com/gardener/inventory-bindings/pkg/core/config"
	asynqutils "github.com/gardener/inventory-bindings/pkg/utils/asynq"
)

// configKey is the key used to store the parsed configuration in the context
type configKey struct{}

// na is the string used to represent missing values in tables
const na = "N/A"

var (
	// errNoServiceCredentials is returned when a service does not refer to
	// any named credentials.
	errNoServiceCredentials = errors.New("no credentials specified for service")

	// errUnknownNamedCredentials is returned when a service refers to named
	// credentials, which are not configured.
	errUnknownNamedCredentials = errors.New("unknown named credentials")

	// errNoAuthenticationMethod is returned when named credentials do not
	// specify an authentication method.
	errNoAuthenticationMethod = errors.New("no authentication method specified")

	// errUnknownAuthenticationMethod is returned for unsupported
	// authentication methods.
	errUnknownAuthenticationMethod = errors.New("unknown authentication method specified")

	// errNoDSN is returned when the database DSN is not configured.
	errNoDSN = errors.New("no database dsn specified")

	// errNoRedisEndpoint is returned when the Redis endpoint is not
	// configured.
	errNoRedisEndpoint = errors.New("no redis endpoint specified")

	// errNoDashboardAddress is returned when the dashboard address is not
	// configured.
	errNoDashboardAddress = errors.New("no dashboard address specified")
)

// getConfig extracts and returns the [config.Config] from app's context.
func getConfig(ctx *cli.Context) *config.Config {
	conf := ctx.Context.Value(configKey{}).(*config.Config)

	return conf
}

// validateDBConfig validates the database configuration settings.
func validateDBConfig(conf *config.Config) error {
	if conf.Database.DSN == "" {
		return errNoDSN
	}

	return nil
}

// validateRedisConfig validates the Redis configuration settings.
func validateRedisConfig(conf *config.Config) error {
	if conf.Redis.Endpoint == "" {
		return errNoRedisEndpoint
	}

	return nil
}

// validateDashboardConfig validates the dashboard configuration settings.
func validateDashboardConfig(conf *config.Config) error {
	if conf.Dashboard.Address == "" {
		return errNoDashboardAddress
	}

	return nil
}

// newDB returns a new [bun.DB] database using the provided config.
func newDB(conf *config.Config) *bun.DB {
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(conf.Database.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(conf.Debug)))

	return db
}

// newMigrator creates a new [migrate.Migrator] for the given database. The
// bundled migrations are used, unless an alternate migration directory is
// configured.
func newMigrator(conf *config.Config, db *bun.DB) (*migrate.Migrator, error) {
	m, err := migrations.Load(conf.Database.MigrationDirectory)
	if err != nil {
		return nil, err
	}

	return migrate.NewMigrator(db, m), nil
}

// newRedisClientOpt returns the [asynq.RedisClientOpt] from the provided
// config.
func newRedisClientOpt(conf *config.Config) (asynq.RedisClientOpt, error) {
	if err := validateRedisConfig(conf); err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynqutils.NewRedisClientOptFromConfig(conf.Redis)
}

// newAsynqClient creates a new [asynq.Client] from the provided config.
func newAsynqClient(conf *config.Config) (*asynq.Client, error) {
	opt, err := newRedisClientOpt(conf)
	if err != nil {
		return nil, err
	}

	return asynq.NewClient(opt), nil
}

// newInspector creates a new [asynq.Inspector] from the provided config.
func newInspector(conf *config.Config) (*asynq.Inspector, error) {
	opt, err := newRedisClientOpt(conf)
	if err != nil {
		return nil, err
	}

	return asynq.NewInspector(opt), nil
}

// newTableWriter returns a new [tablewriter.Table] with the given headers,
// which renders to w.
func newTableWriter(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)

	return table
}
