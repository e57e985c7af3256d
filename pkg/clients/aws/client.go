// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package aws provides the registries of AWS API clients.
package aws

import (
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Identity describes the caller identity of the credentials behind a client.
type Identity struct {
	// AccountID is the AWS Account ID of the caller.
	AccountID string

	// ARN of the caller.
	ARN string

	// UserID is the unique identifier of the caller.
	UserID string
}

// IdentityFromCaller returns the [Identity] from an STS GetCallerIdentity
// response.
func IdentityFromCaller(out *sts.GetCallerIdentityOutput) Identity {
	return Identity{
		AccountID: aws.ToString(out.Account),
		ARN:       aws.ToString(out.Arn),
		UserID:    aws.ToString(out.UserId),
	}
}

// Client pairs an AWS service client with the named credentials and the
// caller identity it was created with.
type Client[T any] struct {
	Identity

	// NamedCredentials refers to the credentials in the configuration,
	// which were used to create the client.
	NamedCredentials string

	// Region is the default region of the client.
	Region string

	// Client is the AWS service client.
	Client T
}

// LogValue implements the [slog.LogValuer] interface.
func (c *Client[T]) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("credentials", c.NamedCredentials),
		slog.String("account_id", c.AccountID),
		slog.String("arn", c.ARN),
		slog.String("user_id", c.UserID),
		slog.String("region", c.Region),
	)
}
