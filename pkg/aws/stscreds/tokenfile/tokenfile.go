// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package tokenfile retrieves identity tokens from a file, e.g. a projected
// service account token, for use with a Web Identity credentials provider.
package tokenfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
)

// TokenRetrieverName specifies the name of the Token Retriever.
const TokenRetrieverName = "token_file"

var (
	// ErrNoTokenPath is returned when the [TokenRetriever] is configured
	// without a path to the token file.
	ErrNoTokenPath = errors.New("no token path specified")

	// ErrEmptyToken is returned when the token file has no content.
	ErrEmptyToken = errors.New("empty identity token")
)

// TokenRetriever retrieves an identity token from a given path. The file is
// read on each call, so rotated tokens are picked up.
type TokenRetriever struct {
	path string
}

var _ stscreds.IdentityTokenRetriever = &TokenRetriever{}

// GetIdentityToken implements the [stscreds.IdentityTokenRetriever] interface.
func (t *TokenRetriever) GetIdentityToken() ([]byte, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil, err
	}

	token := bytes.TrimSpace(data)
	if len(token) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyToken, t.path)
	}

	return token, nil
}

// Option is a function which configures a [TokenRetriever] instance.
type Option func(*TokenRetriever)

// NewTokenRetriever creates a new [TokenRetriever] and configures it using the
// provided options.
func NewTokenRetriever(opts ...Option) (*TokenRetriever, error) {
	tokenRetriever := &TokenRetriever{}
	for _, opt := range opts {
		opt(tokenRetriever)
	}

	if tokenRetriever.path == "" {
		return nil, ErrNoTokenPath
	}

	return tokenRetriever, nil
}

// WithPath returns an [Option], which configures the [TokenRetriever] to read
// the identity token from the given path.
func WithPath(path string) Option {
	return func(t *TokenRetriever) {
		t.path = path
	}
}
