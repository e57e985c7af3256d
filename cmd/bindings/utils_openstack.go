// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"
	gophercloudconfig "github.com/gophercloud/gophercloud/v2/openstack/config"
	"github.com/gophercloud/gophercloud/v2/openstack/identity/v3/projects"
	"github.com/gophercloud/gophercloud/v2/pagination"

	openstackclients "github.com/gardener/inventory-bindings/pkg/clients/openstack"
	vaultclients "github.com/gardener/inventory-bindings/pkg/clients/vault"
	"github.com/gardener/inventory-bindings/pkg/core/config"
	"github.com/gardener/inventory-bindings/pkg/openstack/glance"
)

var (
	errNoUsername                 = errors.New("no username specified")
	errNoPasswordFile             = errors.New("no password file specified")
	errNoAppCredentialsID         = errors.New("no app credentials id specified")
	errNoAppCredentialsSecretFile = errors.New("no app credentials secret file specified")
	errNoAuthority                = errors.New("no authority specified")
	errNoDomain                   = errors.New("no domain specified")
	errNoRegion                   = errors.New("no region specified")
	errNoProject                  = errors.New("no project specified")
	errProjectNotFound            = errors.New("project not found")
	errInvalidVaultSecret         = errors.New("invalid vault secret configuration")
	errUnknownVaultServer         = errors.New("unknown vault server")
	errInvalidVaultSecretKind     = errors.New("invalid vault secret kind")
	errIncompleteVaultSecret      = errors.New("incomplete vault secret")
)

// validateOpenStackConfig validates the OpenStack configuration settings.
func validateOpenStackConfig(conf *config.Config) error {
	for name, creds := range conf.OpenStack.Credentials {
		required := []struct {
			value string
			err   error
		}{
			{creds.Authority, errNoAuthority},
			{creds.Domain, errNoDomain},
			{creds.Region, errNoRegion},
			{creds.Project, errNoProject},
			{creds.Authentication, errNoAuthenticationMethod},
		}
		for _, item := range required {
			if item.value == "" {
				return fmt.Errorf("openstack: %w: credentials %s", item.err, name)
			}
		}

		switch creds.Authentication {
		case config.OpenStackAuthenticationMethodPassword:
			if creds.Password.Username == "" {
				return fmt.Errorf("openstack: %w: %s", errNoUsername, name)
			}
			if creds.Password.PasswordFile == "" {
				return fmt.Errorf("openstack: %w: %s", errNoPasswordFile, name)
			}
		case config.OpenStackAuthenticationMethodAppCredentials:
			if creds.AppCredentials.AppCredentialsID == "" {
				return fmt.Errorf("openstack: %w: %s", errNoAppCredentialsID, name)
			}
			if creds.AppCredentials.AppCredentialsSecretFile == "" {
				return fmt.Errorf("openstack: %w: %s", errNoAppCredentialsSecretFile, name)
			}
		case config.OpenStackAuthenticationMethodVaultSecret:
			vs := creds.VaultSecret
			if vs.Server == "" || vs.SecretEngine == "" || vs.SecretPath == "" {
				return fmt.Errorf("openstack: %w: %s", errInvalidVaultSecret, name)
			}
			if _, ok := conf.Vault.Servers[vs.Server]; !ok || !conf.Vault.IsEnabled {
				return fmt.Errorf("openstack: %w: %s refers to %s", errUnknownVaultServer, name, vs.Server)
			}
		default:
			return fmt.Errorf("openstack: %w: %s uses %s", errUnknownAuthenticationMethod, name, creds.Authentication)
		}
	}

	services := map[string][]string{
		"image": conf.OpenStack.Services.Image.UseCredentials,
	}

	for service, namedCredentials := range services {
		for _, nc := range namedCredentials {
			if nc == "" {
				return fmt.Errorf("openstack: %w: %s", errNoServiceCredentials, service)
			}

			if _, ok := conf.OpenStack.Credentials[nc]; !ok {
				return fmt.Errorf("openstack: %w: service %s refers to %s", errUnknownNamedCredentials, service, nc)
			}
		}
	}

	return nil
}

// readSecretFile reads and trims the secret from the given path.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", err
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("empty secret in %s", path)
	}

	return secret, nil
}

// openStackVaultSecret holds OpenStack credentials read from a Vault
// secret. Kind is either [config.OpenStackVaultSecretKindV3Password] or
// [config.OpenStackVaultSecretKindV3ApplicationCredential].
type openStackVaultSecret struct {
	Kind string `json:"kind"`

	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	ApplicationCredentialID     string `json:"application_credential_id,omitempty"`
	ApplicationCredentialSecret string `json:"application_credential_secret,omitempty"`
}

// authOptions returns the [gophercloud.AuthOptions] for the given named
// credentials using the secret.
func (s openStackVaultSecret) authOptions(creds config.OpenStackCredentialsConfig) (gophercloud.AuthOptions, error) {
	switch s.Kind {
	case config.OpenStackVaultSecretKindV3Password:
		if s.Username == "" || s.Password == "" {
			return gophercloud.AuthOptions{}, fmt.Errorf("%w: empty username or password", errIncompleteVaultSecret)
		}

		opts := gophercloud.AuthOptions{
			IdentityEndpoint: creds.Authority,
			DomainName:       creds.Domain,
			TenantName:       creds.Project,
			Username:         s.Username,
			Password:         s.Password,
			AllowReauth:      true,
		}

		return opts, nil
	case config.OpenStackVaultSecretKindV3ApplicationCredential:
		if s.ApplicationCredentialID == "" || s.ApplicationCredentialSecret == "" {
			return gophercloud.AuthOptions{}, fmt.Errorf("%w: empty application credential id or secret", errIncompleteVaultSecret)
		}

		opts := gophercloud.AuthOptions{
			IdentityEndpoint:            creds.Authority,
			ApplicationCredentialID:     s.ApplicationCredentialID,
			ApplicationCredentialSecret: s.ApplicationCredentialSecret,
			AllowReauth:                 true,
		}

		return opts, nil
	default:
		return gophercloud.AuthOptions{}, fmt.Errorf("%w: %q", errInvalidVaultSecretKind, s.Kind)
	}
}

// vaultSecretAuthOptions reads the OpenStack credentials for the named
// credentials from Vault.
func vaultSecretAuthOptions(ctx context.Context, creds config.OpenStackCredentialsConfig) (gophercloud.AuthOptions, error) {
	vs := creds.VaultSecret
	client, ok := vaultclients.Clientset.Get(vs.Server)
	if !ok {
		return gophercloud.AuthOptions{}, fmt.Errorf("%w: %s", errUnknownVaultServer, vs.Server)
	}

	var secret openStackVaultSecret
	if err := client.ReadKVv2(ctx, vs.SecretEngine, vs.SecretPath, &secret); err != nil {
		return gophercloud.AuthOptions{}, err
	}

	authOpts, err := secret.authOptions(creds)
	if err != nil {
		return gophercloud.AuthOptions{}, fmt.Errorf("vault secret %s/%s: %w", vs.SecretEngine, vs.SecretPath, err)
	}

	return authOpts, nil
}

// newOpenStackProviderClient creates an authenticated
// [gophercloud.ProviderClient] for the given named credentials.
func newOpenStackProviderClient(ctx context.Context, creds config.OpenStackCredentialsConfig) (*gophercloud.ProviderClient, error) {
	var authOpts gophercloud.AuthOptions

	switch creds.Authentication {
	case config.OpenStackAuthenticationMethodPassword:
		password, err := readSecretFile(creds.Password.PasswordFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read password file: %w", err)
		}

		authOpts = gophercloud.AuthOptions{
			IdentityEndpoint: creds.Authority,
			DomainName:       creds.Domain,
			TenantName:       creds.Project,
			Username:         strings.TrimSpace(creds.Password.Username),
			Password:         password,
			AllowReauth:      true,
		}
	case config.OpenStackAuthenticationMethodAppCredentials:
		secret, err := readSecretFile(creds.AppCredentials.AppCredentialsSecretFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read app credentials secret file: %w", err)
		}

		authOpts = gophercloud.AuthOptions{
			IdentityEndpoint:            creds.Authority,
			ApplicationCredentialID:     strings.TrimSpace(creds.AppCredentials.AppCredentialsID),
			ApplicationCredentialName:   creds.AppCredentials.AppCredentialsName,
			ApplicationCredentialSecret: secret,
			AllowReauth:                 true,
		}
	case config.OpenStackAuthenticationMethodVaultSecret:
		opts, err := vaultSecretAuthOptions(ctx, creds)
		if err != nil {
			return nil, err
		}
		authOpts = opts
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownAuthenticationMethod, creds.Authentication)
	}

	return gophercloudconfig.NewProviderClient(ctx, authOpts)
}

// newImageClient creates a new Glance v1 client for the given named
// credentials.
func newImageClient(ctx context.Context, conf *config.Config, namedCredentials string) (openstackclients.Client[*gophercloud.ServiceClient], error) {
	var result openstackclients.Client[*gophercloud.ServiceClient]

	creds, ok := conf.OpenStack.Credentials[namedCredentials]
	if !ok {
		return result, fmt.Errorf("openstack: %w: %q", errUnknownNamedCredentials, namedCredentials)
	}

	providerClient, err := newOpenStackProviderClient(ctx, creds)
	if err != nil {
		return result, fmt.Errorf("unable to create client with credentials %s: %w", namedCredentials, err)
	}

	eo := gophercloud.EndpointOpts{Region: creds.Region}
	serviceClient, err := glance.NewImageV1(providerClient, eo)
	if err != nil {
		return result, fmt.Errorf("unable to create image client with credentials %s: %w", namedCredentials, err)
	}

	scope := openstackclients.ClientScope{
		NamedCredentials: namedCredentials,
		Project:          creds.Project,
		Domain:           creds.Domain,
		Region:           creds.Region,
	}

	projectID, err := getProjectID(ctx, providerClient, scope)
	if err != nil {
		return result, fmt.Errorf("unable to retrieve project ID: %w", err)
	}
	scope.ProjectID = projectID

	result = openstackclients.Client[*gophercloud.ServiceClient]{
		ClientScope: scope,
		Client:      serviceClient,
	}

	return result, nil
}

// configureImageClientset configures the [openstackclients.ImageClientset]
// registry.
func configureImageClientset(ctx context.Context, conf *config.Config) error {
	for _, namedCreds := range conf.OpenStack.Services.Image.UseCredentials {
		client, err := newImageClient(ctx, conf, namedCreds)
		if err != nil {
			return err
		}

		openstackclients.ImageClientset.Overwrite(client.ClientScope, client)
		slog.Info(
			"configured OpenStack client",
			"service", "image",
			"credentials", namedCreds,
			"region", client.Region,
			"domain", client.Domain,
			"project", client.Project,
			"project_id", client.ProjectID,
		)
	}

	return nil
}

// configureOpenStackClients creates the OpenStack API clients from the
// specified configuration.
func configureOpenStackClients(ctx context.Context, conf *config.Config) error {
	if !conf.OpenStack.IsEnabled {
		slog.Warn("OpenStack is not enabled, will not create API clients")

		return nil
	}

	if conf.Debug {
		if err := os.Setenv("OS_DEBUG", "all"); err != nil {
			return err
		}
	}

	slog.Info("configuring OpenStack clients")
	if err := validateOpenStackConfig(conf); err != nil {
		return fmt.Errorf("invalid OpenStack configuration: %w", err)
	}

	if err := configureVaultClients(ctx, conf); err != nil {
		return err
	}

	if err := configureImageClientset(ctx, conf); err != nil {
		return fmt.Errorf("unable to configure OpenStack clients for image: %w", err)
	}

	return nil
}

// getProjectID looks up the ID of the project named in the scope.
func getProjectID(ctx context.Context, providerClient *gophercloud.ProviderClient, scope openstackclients.ClientScope) (string, error) {
	identityClient, err := openstack.NewIdentityV3(providerClient, gophercloud.EndpointOpts{
		Region: scope.Region,
	})
	if err != nil {
		return "", fmt.Errorf("could not create identity client: %w", err)
	}

	var projectID string
	err = projects.ListAvailable(identityClient).EachPage(ctx, func(_ context.Context, page pagination.Page) (bool, error) {
		items, err := projects.ExtractProjects(page)
		if err != nil {
			return false, err
		}

		for _, p := range items {
			if p.Name == scope.Project {
				projectID = p.ID

				return false, nil
			}
		}

		return true, nil
	})
	if err != nil {
		return "", fmt.Errorf("could not list available projects: %w", err)
	}

	if projectID == "" {
		return "", fmt.Errorf("%w: %s", errProjectNotFound, scope.Project)
	}

	return projectID, nil
}
