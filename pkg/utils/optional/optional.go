// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package optional provides a value wrapper, which distinguishes between an
// absent value and the zero value of a type.
package optional

import (
	"fmt"
)

// Value is an optional value of type T. The zero Value is absent.
type Value[T any] struct {
	value   T
	present bool
}

// Of returns a present [Value] wrapping v.
func Of[T any](v T) Value[T] {
	return Value[T]{value: v, present: true}
}

// None returns an absent [Value].
func None[T any]() Value[T] {
	return Value[T]{}
}

// FromPointer returns an absent [Value] if p is nil, or a present [Value]
// wrapping a copy of *p otherwise.
func FromPointer[T any](p *T) Value[T] {
	if p == nil {
		return None[T]()
	}

	return Of(*p)
}

// IsPresent returns true, if the value is present.
func (v Value[T]) IsPresent() bool {
	return v.present
}

// Get returns the wrapped value and a boolean indicating whether it is present.
func (v Value[T]) Get() (T, bool) {
	return v.value, v.present
}

// OrElse returns the wrapped value, if present, or def otherwise.
func (v Value[T]) OrElse(def T) T {
	if v.present {
		return v.value
	}

	return def
}

// Pointer returns a pointer to a copy of the wrapped value, or nil if the value
// is absent.
func (v Value[T]) Pointer() *T {
	if !v.present {
		return nil
	}
	val := v.value

	return &val
}

// String implements the [fmt.Stringer] interface.
func (v Value[T]) String() string {
	if !v.present {
		return "<absent>"
	}

	return fmt.Sprint(v.value)
}
