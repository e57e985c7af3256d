// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

func TestIdentityFromCaller(t *testing.T) {
	testCases := []struct {
		desc string
		out  *sts.GetCallerIdentityOutput
		want Identity
	}{
		{
			desc: "complete identity",
			out: &sts.GetCallerIdentityOutput{
				Account: aws.String("123456789012"),
				Arn:     aws.String("arn:aws:iam::123456789012:user/inventory"),
				UserId:  aws.String("AIDAEXAMPLE"),
			},
			want: Identity{
				AccountID: "123456789012",
				ARN:       "arn:aws:iam::123456789012:user/inventory",
				UserID:    "AIDAEXAMPLE",
			},
		},
		{
			desc: "empty response",
			out:  &sts.GetCallerIdentityOutput{},
			want: Identity{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := IdentityFromCaller(tc.out); got != tc.want {
				t.Fatalf("want %+v, got %+v", tc.want, got)
			}
		})
	}
}
