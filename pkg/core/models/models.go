// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package models provides the base model embedded by all persisted models.
package models

import (
	"time"
)

// Model is the base model for all persisted bindings data. It carries the
// surrogate primary key and bookkeeping timestamps.
type Model struct {
	ID        uint64    `bun:"id,pk,autoincrement"`
	CreatedAt time.Time `bun:"created_at,notnull,nullzero,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,nullzero,default:current_timestamp"`
}
