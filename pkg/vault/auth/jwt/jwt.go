// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package jwt implements the Vault JWT auth method with a token read from a
// file, such as a projected service account token.
package jwt

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"

	vault "github.com/hashicorp/vault/api"
)

// DefaultMountPath is the mount path of the JWT auth method, unless
// configured otherwise.
const DefaultMountPath = "jwt"

var (
	// ErrNoRoleName is returned when no role name is configured.
	ErrNoRoleName = errors.New("no role name specified")

	// ErrNoTokenPath is returned when no token path is configured.
	ErrNoTokenPath = errors.New("no token path specified")

	// ErrEmptyToken is returned when the token file is empty.
	ErrEmptyToken = errors.New("empty token")
)

// Auth implements the [vault.AuthMethod] interface for the JWT auth method.
type Auth struct {
	roleName  string
	mountPath string
	tokenPath string
}

var _ vault.AuthMethod = &Auth{}

// Option configures an [Auth].
type Option func(a *Auth)

// WithMountPath configures the mount path of the auth method.
func WithMountPath(mountPath string) Option {
	return func(a *Auth) {
		if mountPath != "" {
			a.mountPath = mountPath
		}
	}
}

// WithTokenPath configures the file to read the JWT from on each login.
func WithTokenPath(tokenPath string) Option {
	return func(a *Auth) {
		a.tokenPath = tokenPath
	}
}

// New creates a new [Auth] for the given role.
func New(roleName string, opts ...Option) (*Auth, error) {
	if roleName == "" {
		return nil, ErrNoRoleName
	}

	a := &Auth{
		roleName:  roleName,
		mountPath: DefaultMountPath,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.tokenPath == "" {
		return nil, ErrNoTokenPath
	}

	return a, nil
}

// LoginPath returns the path of the login endpoint.
func (a *Auth) LoginPath() string {
	return path.Join("auth", a.mountPath, "login")
}

// Login implements the [vault.AuthMethod] interface.
func (a *Auth) Login(ctx context.Context, client *vault.Client) (*vault.Secret, error) {
	data, err := os.ReadFile(filepath.Clean(a.tokenPath))
	if err != nil {
		return nil, err
	}

	token := bytes.TrimSpace(data)
	if len(token) == 0 {
		return nil, ErrEmptyToken
	}

	body := map[string]any{
		"jwt":  string(token),
		"role": a.roleName,
	}

	return client.Logical().WriteWithContext(ctx, a.LoginPath(), body)
}
