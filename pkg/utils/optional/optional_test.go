// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package optional_test

import (
	"testing"

	"github.com/gardener/inventory-bindings/pkg/utils/optional"
)

func TestOrElse(t *testing.T) {
	value := "value"

	testCases := []struct {
		desc   string
		input  optional.Value[string]
		def    string
		wanted string
	}{
		{
			desc:   "absent with empty default",
			input:  optional.None[string](),
			def:    "",
			wanted: "",
		},
		{
			desc:   "absent with default",
			input:  optional.None[string](),
			def:    "def",
			wanted: "def",
		},
		{
			desc:   "present empty string is not absent",
			input:  optional.Of(""),
			def:    "def",
			wanted: "",
		},
		{
			desc:   "from non-nil pointer",
			input:  optional.FromPointer(&value),
			def:    "def",
			wanted: value,
		},
		{
			desc:   "from nil pointer",
			input:  optional.FromPointer[string](nil),
			def:    "def",
			wanted: "def",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			output := tc.input.OrElse(tc.def)
			if output != tc.wanted {
				t.Fatalf("want %q got %q", tc.wanted, output)
			}
		})
	}
}

func TestPointer(t *testing.T) {
	if p := optional.None[int]().Pointer(); p != nil {
		t.Fatalf("absent value must yield nil pointer, got %v", *p)
	}

	v := optional.Of(42)
	p := v.Pointer()
	if p == nil || *p != 42 {
		t.Fatalf("want pointer to 42, got %v", p)
	}

	// Mutating through the pointer must not change the value
	*p = 1
	if got, _ := v.Get(); got != 42 {
		t.Fatalf("value changed through pointer: %d", got)
	}
}

func TestZeroValueIsAbsent(t *testing.T) {
	var v optional.Value[int]
	if v.IsPresent() {
		t.Fatal("zero Value must be absent")
	}

	if v.String() != "<absent>" {
		t.Fatalf("unexpected string for absent value: %q", v.String())
	}

	if optional.Of(0).String() != "0" {
		t.Fatalf("unexpected string for present value: %q", optional.Of(0).String())
	}
}
