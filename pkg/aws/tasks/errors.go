// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package tasks

import "errors"

// ErrNoPayload is an error, which is returned when a task requires a payload,
// but was called without one.
var ErrNoPayload = errors.New("no payload specified")

// ErrInvalidLookback is an error, which is returned when the lookback of a
// metric query cannot be parsed or is not positive.
var ErrInvalidLookback = errors.New("invalid lookback")
