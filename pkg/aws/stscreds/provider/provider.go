// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package provider creates Web Identity based implementations of
// [aws.CredentialsProvider], which exchange short-lived identity tokens for
// temporary security credentials.
//
// https://docs.aws.amazon.com/IAM/latest/UserGuide/id_roles_providers_create_oidc.html
// https://docs.aws.amazon.com/STS/latest/APIReference/API_AssumeRoleWithWebIdentity.html
package provider

import (
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
)

// DefaultRoleSessionName is the session name used, when none is configured.
const DefaultRoleSessionName = "inventory-bindings"

var (
	// ErrNoSTSClient is returned when creating a new credentials provider
	// without an AWS STS client.
	ErrNoSTSClient = errors.New("no STS client specified")

	// ErrNoRoleARN is returned when creating a new credentials provider
	// without an IAM Role ARN to assume.
	ErrNoRoleARN = errors.New("no IAM Role ARN specified")

	// ErrNoTokenRetriever is returned when creating a new credentials
	// provider without a [stscreds.IdentityTokenRetriever].
	ErrNoTokenRetriever = errors.New("no token retriever specified")
)

// Spec provides the settings for the Web Identity Credentials Provider.
type Spec struct {
	// Client is the API client used to assume the role.
	Client stscreds.AssumeRoleWithWebIdentityAPIClient

	// RoleARN is the IAM Role ARN to assume.
	RoleARN string

	// RoleSessionName uniquely identifies the session. Defaults to
	// [DefaultRoleSessionName].
	RoleSessionName string

	// Duration specifies the expiry duration of the STS credentials. Zero
	// uses the duration picked by AWS STS.
	Duration time.Duration

	// TokenRetriever provides the identity token to exchange.
	TokenRetriever stscreds.IdentityTokenRetriever
}

// New creates a caching Web Identity [aws.CredentialsProvider] from the spec.
func New(spec Spec) (aws.CredentialsProvider, error) {
	if spec.Client == nil {
		return nil, ErrNoSTSClient
	}

	if spec.RoleARN == "" {
		return nil, ErrNoRoleARN
	}

	if spec.TokenRetriever == nil {
		return nil, ErrNoTokenRetriever
	}

	sessionName := spec.RoleSessionName
	if sessionName == "" {
		sessionName = DefaultRoleSessionName
	}

	provider := stscreds.NewWebIdentityRoleProvider(
		spec.Client,
		spec.RoleARN,
		spec.TokenRetriever,
		func(o *stscreds.WebIdentityRoleOptions) {
			o.Duration = spec.Duration
			o.RoleSessionName = sessionName
		},
	)

	return aws.NewCredentialsCache(provider), nil
}
