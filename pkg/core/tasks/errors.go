// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package tasks provides errors shared by the task handlers of the various
// providers.
package tasks

import (
	"errors"
	"fmt"
)

// ErrClientNotFound is returned by task handlers when no API client is
// registered for the requested account, project or scope.
var ErrClientNotFound = errors.New("client not found")

// ClientNotFound returns an error wrapping [ErrClientNotFound], which names
// the service and the key used for the clientset lookup.
func ClientNotFound(service, key string) error {
	return fmt.Errorf("%w: %s client for %s", ErrClientNotFound, service, key)
}
