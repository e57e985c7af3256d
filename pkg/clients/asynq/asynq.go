// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package asynq holds the asynq client and inspector shared by task handlers,
// which need to enqueue tasks or manage queues at runtime.
package asynq

import (
	"errors"

	"github.com/hibiken/asynq"
)

// ErrNotConfigured is returned when a task handler needs the asynq client or
// inspector, but the worker did not configure one.
var ErrNotConfigured = errors.New("asynq client is not configured")

var (
	// Client enqueues tasks on behalf of task handlers.
	Client *asynq.Client

	// Inspector manages queues on behalf of task handlers.
	Inspector *asynq.Inspector
)

// SetClient configures the [asynq.Client] used by task handlers.
func SetClient(c *asynq.Client) {
	Client = c
}

// SetInspector configures the [asynq.Inspector] used by task handlers.
func SetInspector(i *asynq.Inspector) {
	Inspector = i
}

// GetInspector returns the configured [asynq.Inspector], or
// [ErrNotConfigured] if none was set.
func GetInspector() (*asynq.Inspector, error) {
	if Inspector == nil {
		return nil, ErrNotConfigured
	}

	return Inspector, nil
}
