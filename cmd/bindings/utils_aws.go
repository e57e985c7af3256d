// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/gardener/inventory-bindings/pkg/aws/stscreds/kubesatoken"
	"github.com/gardener/inventory-bindings/pkg/aws/stscreds/provider"
	"github.com/gardener/inventory-bindings/pkg/aws/stscreds/tokenfile"
	awsclients "github.com/gardener/inventory-bindings/pkg/clients/aws"
	"github.com/gardener/inventory-bindings/pkg/core/config"
)

var (
	// errNoAWSRegion is returned when there was no region or default
	// region configured for the AWS clients.
	errNoAWSRegion = errors.New("no AWS region specified")

	// errNoAWSTokenRetriever is returned when named credentials do not
	// specify a token retriever.
	errNoAWSTokenRetriever = errors.New("no AWS token retriever specified")

	// errUnknownAWSTokenRetriever is returned when using an unsupported
	// identity token retriever.
	errUnknownAWSTokenRetriever = errors.New("unknown AWS token retriever specified")
)

// validateAWSConfig validates the AWS configuration settings.
func validateAWSConfig(conf *config.Config) error {
	if conf.AWS.Region == "" && conf.AWS.DefaultRegion == "" {
		return errNoAWSRegion
	}

	services := map[string][]string{
		"cloudwatch": conf.AWS.Services.CloudWatch.UseCredentials,
	}

	for service, namedCredentials := range services {
		if len(namedCredentials) == 0 {
			return fmt.Errorf("aws: %w: %s", errNoServiceCredentials, service)
		}

		for _, nc := range namedCredentials {
			if _, ok := conf.AWS.Credentials[nc]; !ok {
				return fmt.Errorf("aws: %w: service %s refers to %s", errUnknownNamedCredentials, service, nc)
			}
		}
	}

	supportedTokenRetrievers := []string{
		config.DefaultAWSTokenRetriever,
		tokenfile.TokenRetrieverName,
		kubesatoken.TokenRetrieverName,
	}
	for name, creds := range conf.AWS.Credentials {
		if creds.TokenRetriever == "" {
			return fmt.Errorf("aws: %w: %s", errNoAWSTokenRetriever, name)
		}

		if !slices.Contains(supportedTokenRetrievers, creds.TokenRetriever) {
			return fmt.Errorf("aws: %w: %s uses %s", errUnknownAWSTokenRetriever, name, creds.TokenRetriever)
		}
	}

	return nil
}

// newSTSClient creates the STS client used by Web Identity credentials
// providers.
func newSTSClient(conf *config.Config) *sts.Client {
	region := conf.AWS.Region
	if region == "" {
		region = conf.AWS.DefaultRegion
	}

	return sts.NewFromConfig(aws.Config{
		Region: region,
		AppID:  conf.AWS.AppID,
	})
}

// newTokenFileCredentialsProvider creates a new [aws.CredentialsProvider],
// which exchanges the token read from a file for temporary security
// credentials.
func newTokenFileCredentialsProvider(conf *config.Config, creds config.AWSCredentialsConfig) (aws.CredentialsProvider, error) {
	tokenRetriever, err := tokenfile.NewTokenRetriever(
		tokenfile.WithPath(creds.TokenFileRetriever.Path),
	)
	if err != nil {
		return nil, err
	}

	spec := provider.Spec{
		Client:          newSTSClient(conf),
		RoleARN:         creds.TokenFileRetriever.RoleARN,
		RoleSessionName: creds.TokenFileRetriever.RoleSessionName,
		Duration:        creds.TokenFileRetriever.Duration,
		TokenRetriever:  tokenRetriever,
	}

	return provider.New(spec)
}

// newKubeSATokenCredentialsProvider creates a new [aws.CredentialsProvider],
// which exchanges a Kubernetes service account token for temporary security
// credentials.
func newKubeSATokenCredentialsProvider(conf *config.Config, creds config.AWSCredentialsConfig) (aws.CredentialsProvider, error) {
	settings := creds.KubeSATokenRetriever
	tokenRetriever, err := kubesatoken.NewTokenRetriever(
		kubesatoken.WithKubeconfig(settings.Kubeconfig),
		kubesatoken.WithServiceAccount(settings.ServiceAccount),
		kubesatoken.WithNamespace(settings.Namespace),
		kubesatoken.WithAudiences(settings.Audiences...),
		kubesatoken.WithTokenExpiration(settings.Duration),
	)
	if err != nil {
		return nil, err
	}

	spec := provider.Spec{
		Client:          newSTSClient(conf),
		RoleARN:         settings.RoleARN,
		RoleSessionName: settings.RoleSessionName,
		Duration:        settings.Duration,
		TokenRetriever:  tokenRetriever,
	}

	return provider.New(spec)
}

// loadAWSConfig loads the AWS configuration for the given named credentials.
func loadAWSConfig(ctx context.Context, conf *config.Config, namedCredentials string) (aws.Config, error) {
	creds, ok := conf.AWS.Credentials[namedCredentials]
	if !ok {
		return aws.Config{}, fmt.Errorf("aws: %w: %s", errUnknownNamedCredentials, namedCredentials)
	}

	opts := []func(o *awsconfig.LoadOptions) error{
		awsconfig.WithRegion(conf.AWS.Region),
		awsconfig.WithDefaultRegion(conf.AWS.DefaultRegion),
		awsconfig.WithAppID(conf.AWS.AppID),
	}

	switch creds.TokenRetriever {
	case config.DefaultAWSTokenRetriever:
		// Shared config and environment only
	case tokenfile.TokenRetrieverName:
		credsProvider, err := newTokenFileCredentialsProvider(conf, creds)
		if err != nil {
			return aws.Config{}, err
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(credsProvider))
	case kubesatoken.TokenRetrieverName:
		credsProvider, err := newKubeSATokenCredentialsProvider(conf, creds)
		if err != nil {
			return aws.Config{}, err
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(credsProvider))
	default:
		return aws.Config{}, fmt.Errorf("aws: %w: %s", errUnknownAWSTokenRetriever, creds.TokenRetriever)
	}

	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// newCloudWatchClient creates a new CloudWatch client for the given named
// credentials, along with the caller identity of the credentials.
func newCloudWatchClient(ctx context.Context, conf *config.Config, namedCredentials string) (*awsclients.Client[*cloudwatch.Client], error) {
	awsConf, err := loadAWSConfig(ctx, conf, namedCredentials)
	if err != nil {
		return nil, err
	}

	stsClient := sts.NewFromConfig(awsConf)
	callerIdentity, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("aws: cannot get caller identity for %s: %w", namedCredentials, err)
	}

	client := &awsclients.Client[*cloudwatch.Client]{
		Identity:         awsclients.IdentityFromCaller(callerIdentity),
		NamedCredentials: namedCredentials,
		Region:           awsConf.Region,
		Client:           cloudwatch.NewFromConfig(awsConf),
	}

	return client, nil
}

// configureCloudWatchClientset configures the [awsclients.CloudWatchClientset]
// registry.
func configureCloudWatchClientset(ctx context.Context, conf *config.Config) error {
	for _, namedCreds := range conf.AWS.Services.CloudWatch.UseCredentials {
		client, err := newCloudWatchClient(ctx, conf, namedCreds)
		if err != nil {
			return err
		}

		awsclients.CloudWatchClientset.Overwrite(client.AccountID, client)
		slog.Info("configured AWS client", "service", "cloudwatch", "client", client)
	}

	return nil
}

// configureAWSClients creates the AWS API clients and registers them.
func configureAWSClients(ctx context.Context, conf *config.Config) error {
	if !conf.AWS.IsEnabled {
		slog.Warn("AWS is not enabled, will not create API clients")

		return nil
	}

	slog.Info("configuring AWS clients")
	if err := validateAWSConfig(conf); err != nil {
		return err
	}

	if err := configureCloudWatchClientset(ctx, conf); err != nil {
		return fmt.Errorf("unable to configure AWS clients for cloudwatch: %w", err)
	}

	return nil
}
