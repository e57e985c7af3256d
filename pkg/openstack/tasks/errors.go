// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"errors"
)

// ErrInvalidScope is an error which is returned when a task payload carries an
// incomplete client scope.
var ErrInvalidScope = errors.New("invalid client scope")
