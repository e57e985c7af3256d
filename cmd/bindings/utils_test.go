// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"testing"

	"github.com/gophercloud/gophercloud/v2"

	"github.com/gardener/inventory-bindings/pkg/aws/cloudwatch"
	"github.com/gardener/inventory-bindings/pkg/aws/stscreds/kubesatoken"
	"github.com/gardener/inventory-bindings/pkg/aws/stscreds/tokenfile"
	"github.com/gardener/inventory-bindings/pkg/core/config"
)

func TestValidateAWSConfig(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			AWS: config.AWSConfig{
				Region: "eu-west-1",
				Services: config.AWSServices{
					CloudWatch: config.AWSServiceConfig{UseCredentials: []string{"default"}},
				},
				Credentials: map[string]config.AWSCredentialsConfig{
					"default": {TokenRetriever: config.DefaultAWSTokenRetriever},
				},
			},
		}
	}

	testCases := []struct {
		desc    string
		mutate  func(c *config.Config)
		wantErr error
	}{
		{
			desc:    "valid config",
			mutate:  func(*config.Config) {},
			wantErr: nil,
		},
		{
			desc: "no region",
			mutate: func(c *config.Config) {
				c.AWS.Region = ""
			},
			wantErr: errNoAWSRegion,
		},
		{
			desc: "default region only",
			mutate: func(c *config.Config) {
				c.AWS.Region = ""
				c.AWS.DefaultRegion = "eu-central-1"
			},
			wantErr: nil,
		},
		{
			desc: "no service credentials",
			mutate: func(c *config.Config) {
				c.AWS.Services.CloudWatch.UseCredentials = nil
			},
			wantErr: errNoServiceCredentials,
		},
		{
			desc: "unknown named credentials",
			mutate: func(c *config.Config) {
				c.AWS.Services.CloudWatch.UseCredentials = []string{"missing"}
			},
			wantErr: errUnknownNamedCredentials,
		},
		{
			desc: "no token retriever",
			mutate: func(c *config.Config) {
				c.AWS.Credentials["default"] = config.AWSCredentialsConfig{}
			},
			wantErr: errNoAWSTokenRetriever,
		},
		{
			desc: "unknown token retriever",
			mutate: func(c *config.Config) {
				c.AWS.Credentials["default"] = config.AWSCredentialsConfig{TokenRetriever: "instance_profile"}
			},
			wantErr: errUnknownAWSTokenRetriever,
		},
		{
			desc: "token file retriever",
			mutate: func(c *config.Config) {
				c.AWS.Credentials["default"] = config.AWSCredentialsConfig{TokenRetriever: tokenfile.TokenRetrieverName}
			},
			wantErr: nil,
		},
		{
			desc: "kubernetes service account token retriever",
			mutate: func(c *config.Config) {
				c.AWS.Credentials["default"] = config.AWSCredentialsConfig{TokenRetriever: kubesatoken.TokenRetrieverName}
			},
			wantErr: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			conf := valid()
			tc.mutate(conf)
			if err := validateAWSConfig(conf); !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestParseDimensions(t *testing.T) {
	got, err := parseDimensions([]string{"InstanceId=i-1", "AutoScalingGroupName=asg"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	want := []cloudwatch.Dimension{
		{Name: "InstanceId", Value: "i-1"},
		{Name: "AutoScalingGroupName", Value: "asg"},
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("want %v, got %v", want, got)
	}

	if _, err := parseDimensions([]string{"InstanceId"}); !errors.Is(err, cloudwatch.ErrInvalidDimension) {
		t.Fatalf("want ErrInvalidDimension, got %v", err)
	}
}

func TestValidateDBConfig(t *testing.T) {
	if err := validateDBConfig(&config.Config{}); !errors.Is(err, errNoDSN) {
		t.Fatalf("want errNoDSN, got %v", err)
	}

	conf := &config.Config{Database: config.DatabaseConfig{DSN: "postgres://localhost/inventory"}}
	if err := validateDBConfig(conf); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestValidateOpenStackVaultSecret(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			OpenStack: config.OpenStackConfig{
				Services: config.OpenStackServices{
					Image: config.OpenStackServiceConfig{UseCredentials: []string{"project-a"}},
				},
				Credentials: map[string]config.OpenStackCredentialsConfig{
					"project-a": {
						Authentication: config.OpenStackAuthenticationMethodVaultSecret,
						Authority:      "https://keystone.example.org/v3",
						Domain:         "default",
						Project:        "project-a",
						Region:         "eu-de-1",
						VaultSecret: config.OpenStackVaultSecretConfig{
							Server:       "main",
							SecretEngine: "kv",
							SecretPath:   "openstack/project-a",
						},
					},
				},
			},
			Vault: config.VaultConfig{
				IsEnabled: true,
				Servers: map[string]config.VaultServerConfig{
					"main": {Endpoint: "https://vault.example.org", AuthMethod: config.VaultAuthMethodToken},
				},
			},
		}
	}

	testCases := []struct {
		desc    string
		mutate  func(c *config.Config)
		wantErr error
	}{
		{
			desc:    "valid config",
			mutate:  func(*config.Config) {},
			wantErr: nil,
		},
		{
			desc: "no secret path",
			mutate: func(c *config.Config) {
				creds := c.OpenStack.Credentials["project-a"]
				creds.VaultSecret.SecretPath = ""
				c.OpenStack.Credentials["project-a"] = creds
			},
			wantErr: errInvalidVaultSecret,
		},
		{
			desc: "unknown vault server",
			mutate: func(c *config.Config) {
				creds := c.OpenStack.Credentials["project-a"]
				creds.VaultSecret.Server = "backup"
				c.OpenStack.Credentials["project-a"] = creds
			},
			wantErr: errUnknownVaultServer,
		},
		{
			desc: "vault disabled",
			mutate: func(c *config.Config) {
				c.Vault.IsEnabled = false
			},
			wantErr: errUnknownVaultServer,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			conf := valid()
			tc.mutate(conf)
			if err := validateOpenStackConfig(conf); !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestOpenStackVaultSecretAuthOptions(t *testing.T) {
	creds := config.OpenStackCredentialsConfig{
		Authority: "https://keystone.example.org/v3",
		Domain:    "default",
		Project:   "project-a",
	}

	testCases := []struct {
		desc    string
		secret  openStackVaultSecret
		want    gophercloud.AuthOptions
		wantErr error
	}{
		{
			desc: "password",
			secret: openStackVaultSecret{
				Kind:     config.OpenStackVaultSecretKindV3Password,
				Username: "inventory",
				Password: "secret",
			},
			want: gophercloud.AuthOptions{
				IdentityEndpoint: "https://keystone.example.org/v3",
				DomainName:       "default",
				TenantName:       "project-a",
				Username:         "inventory",
				Password:         "secret",
				AllowReauth:      true,
			},
		},
		{
			desc: "application credential",
			secret: openStackVaultSecret{
				Kind:                        config.OpenStackVaultSecretKindV3ApplicationCredential,
				ApplicationCredentialID:     "app-id",
				ApplicationCredentialSecret: "app-secret",
			},
			want: gophercloud.AuthOptions{
				IdentityEndpoint:            "https://keystone.example.org/v3",
				ApplicationCredentialID:     "app-id",
				ApplicationCredentialSecret: "app-secret",
				AllowReauth:                 true,
			},
		},
		{
			desc:    "password without username",
			secret:  openStackVaultSecret{Kind: config.OpenStackVaultSecretKindV3Password, Password: "secret"},
			wantErr: errIncompleteVaultSecret,
		},
		{
			desc:    "unknown kind",
			secret:  openStackVaultSecret{Kind: "token"},
			wantErr: errInvalidVaultSecretKind,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := tc.secret.authOptions(creds)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}

			if tc.wantErr != nil {
				return
			}

			if got.IdentityEndpoint != tc.want.IdentityEndpoint ||
				got.DomainName != tc.want.DomainName ||
				got.TenantName != tc.want.TenantName ||
				got.Username != tc.want.Username ||
				got.Password != tc.want.Password ||
				got.ApplicationCredentialID != tc.want.ApplicationCredentialID ||
				got.ApplicationCredentialSecret != tc.want.ApplicationCredentialSecret ||
				got.AllowReauth != tc.want.AllowReauth {
				t.Fatalf("want %+v, got %+v", tc.want, got)
			}
		})
	}
}
