// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package client wraps the Vault API client with authentication from the
// configuration, auth token lifetime management and KV v2 secret decoding.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	vault "github.com/hashicorp/vault/api"

	"github.com/gardener/inventory-bindings/pkg/core/config"
	"github.com/gardener/inventory-bindings/pkg/vault/auth/jwt"
)

// refreshRatio is the share of the auth token TTL after which the token is
// renewed or a new login is performed.
const refreshRatio = 0.8

// renewIncrement is the requested TTL increment in seconds when renewing the
// auth token.
const renewIncrement = 3600

var (
	// ErrNoEndpoint is returned when a Vault server has no endpoint.
	ErrNoEndpoint = errors.New("no vault endpoint specified")

	// ErrUnknownAuthMethod is returned for unsupported auth methods.
	ErrUnknownAuthMethod = errors.New("unknown vault auth method")

	// ErrNoAuthMethod is returned when attempting to login without an auth
	// method.
	ErrNoAuthMethod = errors.New("no auth method implementation configured")

	// ErrNoAuthInfo is returned when Vault returned no auth info.
	ErrNoAuthInfo = errors.New("no auth info returned")

	// ErrNoSecret is returned when a secret does not exist or was deleted.
	ErrNoSecret = errors.New("secret not found")
)

// Option configures a [Client].
type Option func(c *Client) error

// Client is a [vault.Client], which keeps its auth token alive.
type Client struct {
	*vault.Client

	am vault.AuthMethod
}

// WithAuthMethod configures the [Client] to login using the given auth method.
func WithAuthMethod(am vault.AuthMethod) Option {
	return func(c *Client) error {
		c.am = am

		return nil
	}
}

// WithTokenFromPath configures the [Client] to use the token read from the
// given file.
func WithTokenFromPath(tokenPath string) Option {
	return func(c *Client) error {
		data, err := os.ReadFile(filepath.Clean(tokenPath))
		if err != nil {
			return err
		}

		token := bytes.TrimSpace(data)
		if len(token) == 0 {
			return fmt.Errorf("empty vault token in %s", tokenPath)
		}
		c.SetToken(string(token))

		return nil
	}
}

// New creates a new [Client] from the given config and options.
func New(conf *vault.Config, opts ...Option) (*Client, error) {
	vaultClient, err := vault.NewClient(conf)
	if err != nil {
		return nil, err
	}

	c := &Client{Client: vaultClient}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// NewFromConfig creates a new [Client] for the given server settings.
func NewFromConfig(conf *config.VaultServerConfig) (*Client, error) {
	if conf.Endpoint == "" {
		return nil, ErrNoEndpoint
	}

	var opts []Option
	switch conf.AuthMethod {
	case config.VaultAuthMethodToken:
		opts = append(opts, WithTokenFromPath(conf.TokenAuth.TokenPath))
	case config.VaultAuthMethodJWT:
		am, err := jwt.New(
			conf.JWTAuth.RoleName,
			jwt.WithMountPath(conf.JWTAuth.MountPath),
			jwt.WithTokenPath(conf.JWTAuth.TokenPath),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithAuthMethod(am))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAuthMethod, conf.AuthMethod)
	}

	vaultConf := vault.DefaultConfig()
	if vaultConf.Error != nil {
		return nil, vaultConf.Error
	}
	vaultConf.Address = conf.Endpoint

	tlsConf := &vault.TLSConfig{
		CACert:        conf.TLSConfig.CACert,
		CAPath:        conf.TLSConfig.CAPath,
		ClientCert:    conf.TLSConfig.ClientCert,
		ClientKey:     conf.TLSConfig.ClientKey,
		TLSServerName: conf.TLSConfig.TLSServerName,
		Insecure:      conf.TLSConfig.Insecure,
	}
	if err := vaultConf.ConfigureTLS(tlsConf); err != nil {
		return nil, err
	}

	return New(vaultConf, opts...)
}

// ReadKVv2 reads the secret at the given path of a KV v2 secret engine and
// decodes its data into out.
func (c *Client) ReadKVv2(ctx context.Context, engine, secretPath string, out any) error {
	secret, err := c.KVv2(engine).Get(ctx, secretPath)
	if err != nil {
		return fmt.Errorf("cannot read secret %s/%s: %w", engine, secretPath, err)
	}

	if secret == nil || secret.Data == nil {
		return fmt.Errorf("%w: %s/%s", ErrNoSecret, engine, secretPath)
	}

	data, err := json.Marshal(secret.Data)
	if err != nil {
		return fmt.Errorf("cannot encode secret %s/%s: %w", engine, secretPath, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("cannot decode secret %s/%s: %w", engine, secretPath, err)
	}

	return nil
}

// ManageAuthTokenLifetime authenticates and keeps the auth token alive until
// ctx is done. Renewable tokens are renewed. Tokens which cannot be renewed
// are replaced by a new login, when an auth method is configured.
func (c *Client) ManageAuthTokenLifetime(ctx context.Context) error {
	var authInfo *vault.Secret
	var err error
	if c.am != nil {
		authInfo, err = c.login(ctx)
	} else {
		authInfo, err = c.Auth().Token().LookupSelfWithContext(ctx)
	}
	if err != nil {
		return err
	}

	ttl, renewable, err := tokenLifetime(authInfo)
	if err != nil {
		return err
	}

	if ttl <= 0 || (c.am == nil && !renewable) {
		return nil
	}

	go c.keepAlive(ctx, ttl, renewable)

	return nil
}

// keepAlive refreshes the auth token before its TTL runs out.
func (c *Client) keepAlive(ctx context.Context, ttl time.Duration, renewable bool) {
	logger := slog.With("address", c.Address())
	interval := refreshInterval(ttl)
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		authInfo, err := c.refresh(ctx, renewable)
		if err != nil {
			logger.Error("failed to refresh vault token", "reason", err)
			timer.Reset(interval)

			continue
		}

		ttl, renewable, err = tokenLifetime(authInfo)
		if err != nil {
			logger.Warn("cannot read vault token lifetime", "reason", err)
			timer.Reset(interval)

			continue
		}

		if ttl <= 0 {
			logger.Warn("vault token ttl <= 0, will not refresh")

			return
		}

		interval = refreshInterval(ttl)
		timer.Reset(interval)
	}
}

// refresh renews the auth token, if renewable, falling back to a new login.
func (c *Client) refresh(ctx context.Context, renewable bool) (*vault.Secret, error) {
	if renewable {
		slog.Info("renewing vault token", "address", c.Address())
		authInfo, err := c.Auth().Token().RenewSelfWithContext(ctx, renewIncrement)
		if err == nil || c.am == nil {
			return authInfo, err
		}
		slog.Warn("failed to renew vault token", "address", c.Address(), "reason", err)
	}

	return c.login(ctx)
}

// login performs a login using the configured auth method.
func (c *Client) login(ctx context.Context) (*vault.Secret, error) {
	if c.am == nil {
		return nil, ErrNoAuthMethod
	}

	slog.Info("authenticating with vault", "address", c.Address())
	authInfo, err := c.Auth().Login(ctx, c.am)
	if err != nil {
		return nil, err
	}

	if authInfo == nil {
		return nil, ErrNoAuthInfo
	}

	return authInfo, nil
}

// tokenLifetime returns the TTL of the auth token and whether it is
// renewable.
func tokenLifetime(authInfo *vault.Secret) (time.Duration, bool, error) {
	if authInfo == nil {
		return 0, false, ErrNoAuthInfo
	}

	ttl, err := authInfo.TokenTTL()
	if err != nil {
		return 0, false, err
	}

	renewable, err := authInfo.TokenIsRenewable()
	if err != nil {
		return 0, false, err
	}

	return ttl, renewable, nil
}

// refreshInterval returns the interval after which a token with the given TTL
// is refreshed.
func refreshInterval(ttl time.Duration) time.Duration {
	return time.Duration(float64(ttl) * refreshRatio)
}
