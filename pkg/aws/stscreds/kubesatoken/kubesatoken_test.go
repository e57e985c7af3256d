// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package kubesatoken

import (
	"errors"
	"slices"
	"testing"
	"time"

	authenticationv1 "k8s.io/api/authentication/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func TestNewTokenRetrieverValidation(t *testing.T) {
	client := fake.NewClientset()

	testCases := []struct {
		desc    string
		opts    []Option
		wantErr error
	}{
		{
			desc:    "no service account",
			opts:    []Option{WithClient(client), WithNamespace("inventory")},
			wantErr: ErrNoServiceAccount,
		},
		{
			desc:    "no namespace",
			opts:    []Option{WithClient(client), WithServiceAccount("aws")},
			wantErr: ErrNoNamespace,
		},
		{
			desc:    "valid",
			opts:    []Option{WithClient(client), WithNamespace("inventory"), WithServiceAccount("aws")},
			wantErr: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if _, err := NewTokenRetriever(tc.opts...); !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

// tokenReactor answers token subresource requests with the given token and
// records the requests.
func tokenReactor(token string, requests *[]*authenticationv1.TokenRequest) k8stesting.ReactionFunc {
	return func(action k8stesting.Action) (bool, runtime.Object, error) {
		if action.GetSubresource() != "token" {
			return false, nil, nil
		}

		req, ok := action.(k8stesting.CreateAction).GetObject().(*authenticationv1.TokenRequest)
		if !ok {
			return true, nil, errors.New("unexpected object")
		}
		*requests = append(*requests, req)

		out := req.DeepCopy()
		out.Status.Token = token

		return true, out, nil
	}
}

func TestGetIdentityToken(t *testing.T) {
	var requests []*authenticationv1.TokenRequest
	client := fake.NewClientset()
	client.PrependReactor("create", "serviceaccounts", tokenReactor("eyJhbGciOi", &requests))

	retriever, err := NewTokenRetriever(
		WithClient(client),
		WithNamespace("inventory"),
		WithServiceAccount("aws"),
		WithAudiences("sts.amazonaws.com"),
		WithTokenExpiration(time.Hour),
	)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	token, err := retriever.GetIdentityToken()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if string(token) != "eyJhbGciOi" {
		t.Fatalf("unexpected token %q", token)
	}

	if len(requests) != 1 {
		t.Fatalf("want 1 token request, got %d", len(requests))
	}

	spec := requests[0].Spec
	if !slices.Equal(spec.Audiences, []string{"sts.amazonaws.com"}) {
		t.Fatalf("unexpected audiences %v", spec.Audiences)
	}

	if spec.ExpirationSeconds == nil || *spec.ExpirationSeconds != 3600 {
		t.Fatalf("unexpected expiration %v", spec.ExpirationSeconds)
	}
}

func TestGetIdentityTokenEmpty(t *testing.T) {
	var requests []*authenticationv1.TokenRequest
	client := fake.NewClientset()
	client.PrependReactor("create", "serviceaccounts", tokenReactor("", &requests))

	retriever, err := NewTokenRetriever(WithClient(client), WithNamespace("inventory"), WithServiceAccount("aws"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if _, err := retriever.GetIdentityToken(); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("want ErrEmptyToken, got %v", err)
	}

	if requests[0].Spec.ExpirationSeconds != nil {
		t.Fatal("expiration must not be requested without a duration")
	}
}
