// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/sts/types"
)

type staticToken string

func (s staticToken) GetIdentityToken() ([]byte, error) {
	return []byte(s), nil
}

type fakeSTS struct {
	input *sts.AssumeRoleWithWebIdentityInput
}

func (f *fakeSTS) AssumeRoleWithWebIdentity(_ context.Context, params *sts.AssumeRoleWithWebIdentityInput, _ ...func(*sts.Options)) (*sts.AssumeRoleWithWebIdentityOutput, error) {
	f.input = params
	out := &sts.AssumeRoleWithWebIdentityOutput{
		Credentials: &types.Credentials{
			AccessKeyId:     aws.String("AKID"),
			SecretAccessKey: aws.String("SECRET"),
			SessionToken:    aws.String("TOKEN"),
			Expiration:      aws.Time(time.Now().Add(time.Hour)),
		},
	}

	return out, nil
}

func TestNewValidation(t *testing.T) {
	testCases := []struct {
		desc    string
		spec    Spec
		wantErr error
	}{
		{
			desc:    "no client",
			spec:    Spec{RoleARN: "arn", TokenRetriever: staticToken("t")},
			wantErr: ErrNoSTSClient,
		},
		{
			desc:    "no role",
			spec:    Spec{Client: &fakeSTS{}, TokenRetriever: staticToken("t")},
			wantErr: ErrNoRoleARN,
		},
		{
			desc:    "no token retriever",
			spec:    Spec{Client: &fakeSTS{}, RoleARN: "arn"},
			wantErr: ErrNoTokenRetriever,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if _, err := New(tc.spec); !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRetrieve(t *testing.T) {
	client := &fakeSTS{}
	p, err := New(Spec{
		Client:         client,
		RoleARN:        "arn:aws:iam::123456789012:role/inventory",
		TokenRetriever: staticToken("jwt"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	creds, err := p.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if creds.AccessKeyID != "AKID" {
		t.Fatalf("unexpected access key %q", creds.AccessKeyID)
	}

	if aws.ToString(client.input.RoleSessionName) != DefaultRoleSessionName {
		t.Fatalf("unexpected session name %q", aws.ToString(client.input.RoleSessionName))
	}

	if aws.ToString(client.input.WebIdentityToken) != "jwt" {
		t.Fatalf("unexpected token %q", aws.ToString(client.input.WebIdentityToken))
	}
}
