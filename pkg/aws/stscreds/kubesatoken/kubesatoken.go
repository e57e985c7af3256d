// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package kubesatoken retrieves identity tokens by issuing Kubernetes service
// account tokens via the TokenRequest API, for use with a Web Identity
// credentials provider.
package kubesatoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	authenticationv1 "k8s.io/api/authentication/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/utils/ptr"
)

// TokenRetrieverName specifies the name of the Token Retriever.
const TokenRetrieverName = "kube_sa_token"

// requestTimeout bounds a single TokenRequest call, since
// [stscreds.IdentityTokenRetriever] does not pass a context.
const requestTimeout = 30 * time.Second

var (
	// ErrNoServiceAccount is returned when the [TokenRetriever] is
	// configured without a service account.
	ErrNoServiceAccount = errors.New("no service account specified")

	// ErrNoNamespace is returned when the [TokenRetriever] is configured
	// without the namespace of the service account.
	ErrNoNamespace = errors.New("no namespace specified")

	// ErrEmptyToken is returned when the API server issued an empty token.
	ErrEmptyToken = errors.New("empty service account token")
)

// TokenRetriever issues a new service account token on each call.
type TokenRetriever struct {
	client         kubernetes.Interface
	kubeconfig     string
	namespace      string
	serviceAccount string
	audiences      []string
	duration       time.Duration
}

var _ stscreds.IdentityTokenRetriever = &TokenRetriever{}

// GetToken issues a new token for the service account.
func (t *TokenRetriever) GetToken(ctx context.Context) (*authenticationv1.TokenRequest, error) {
	req := &authenticationv1.TokenRequest{
		Spec: authenticationv1.TokenRequestSpec{
			Audiences: t.audiences,
		},
	}
	if t.duration > 0 {
		req.Spec.ExpirationSeconds = ptr.To(int64(t.duration.Seconds()))
	}

	out, err := t.client.CoreV1().ServiceAccounts(t.namespace).CreateToken(ctx, t.serviceAccount, req, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("cannot issue token for %s/%s: %w", t.namespace, t.serviceAccount, err)
	}

	return out, nil
}

// GetIdentityToken implements the [stscreds.IdentityTokenRetriever] interface.
func (t *TokenRetriever) GetIdentityToken() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	out, err := t.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	if out.Status.Token == "" {
		return nil, fmt.Errorf("%w: %s/%s", ErrEmptyToken, t.namespace, t.serviceAccount)
	}

	return []byte(out.Status.Token), nil
}

// Option is a function which configures a [TokenRetriever] instance.
type Option func(*TokenRetriever)

// NewTokenRetriever creates a new [TokenRetriever] and configures it using the
// provided options. Without a client, one is created from the kubeconfig
// file, or from the in-cluster configuration if no kubeconfig is set.
func NewTokenRetriever(opts ...Option) (*TokenRetriever, error) {
	t := &TokenRetriever{}
	for _, opt := range opts {
		opt(t)
	}

	if t.serviceAccount == "" {
		return nil, ErrNoServiceAccount
	}

	if t.namespace == "" {
		return nil, ErrNoNamespace
	}

	if t.client != nil {
		return t, nil
	}

	restConfig, err := clientcmd.BuildConfigFromFlags("", t.kubeconfig)
	if err != nil {
		return nil, err
	}

	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, err
	}
	t.client = client

	return t, nil
}

// WithClient configures the Kubernetes client of the [TokenRetriever].
func WithClient(client kubernetes.Interface) Option {
	return func(t *TokenRetriever) {
		t.client = client
	}
}

// WithKubeconfig configures the kubeconfig file used to create a client.
func WithKubeconfig(path string) Option {
	return func(t *TokenRetriever) {
		t.kubeconfig = path
	}
}

// WithNamespace configures the namespace of the service account.
func WithNamespace(namespace string) Option {
	return func(t *TokenRetriever) {
		t.namespace = namespace
	}
}

// WithServiceAccount configures the service account to issue tokens for.
func WithServiceAccount(name string) Option {
	return func(t *TokenRetriever) {
		t.serviceAccount = name
	}
}

// WithAudiences configures the audiences of the issued tokens.
func WithAudiences(audiences ...string) Option {
	return func(t *TokenRetriever) {
		t.audiences = audiences
	}
}

// WithTokenExpiration configures the requested validity of issued tokens.
func WithTokenExpiration(duration time.Duration) Option {
	return func(t *TokenRetriever) {
		t.duration = duration
	}
}
