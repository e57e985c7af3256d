// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"errors"
	"slices"
	"testing"

	openstackclients "github.com/gardener/inventory-bindings/pkg/clients/openstack"
)

func TestIsValidProjectScope(t *testing.T) {
	valid := openstackclients.ClientScope{
		NamedCredentials: "default",
		Project:          "project",
		ProjectID:        "project-id",
		Domain:           "domain",
		Region:           "region",
	}

	testCases := []struct {
		desc     string
		mutate   func(s *openstackclients.ClientScope)
		wantErrs []error
	}{
		{desc: "valid scope", mutate: func(*openstackclients.ClientScope) {}},
		{desc: "missing region", mutate: func(s *openstackclients.ClientScope) { s.Region = "" }, wantErrs: []error{ErrMissingRegion}},
		{desc: "missing domain", mutate: func(s *openstackclients.ClientScope) { s.Domain = "" }, wantErrs: []error{ErrMissingDomain}},
		{desc: "missing credentials", mutate: func(s *openstackclients.ClientScope) { s.NamedCredentials = "" }, wantErrs: []error{ErrMissingCredentials}},
		{desc: "missing project", mutate: func(s *openstackclients.ClientScope) { s.Project = "" }, wantErrs: []error{ErrMissingProject}},
		{desc: "missing project id", mutate: func(s *openstackclients.ClientScope) { s.ProjectID = "" }, wantErrs: []error{ErrMissingProjectID}},
		{
			desc: "all missing fields are reported",
			mutate: func(s *openstackclients.ClientScope) {
				*s = openstackclients.ClientScope{}
			},
			wantErrs: []error{ErrMissingRegion, ErrMissingDomain, ErrMissingCredentials, ErrMissingProject, ErrMissingProjectID},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			scope := valid
			tc.mutate(&scope)
			err := IsValidProjectScope(scope)
			if len(tc.wantErrs) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %s", err)
				}

				return
			}

			for _, want := range tc.wantErrs {
				if !errors.Is(err, want) {
					t.Fatalf("want error %v, got %v", want, err)
				}
			}
		})
	}
}

func TestScopeLabels(t *testing.T) {
	scope := openstackclients.ClientScope{Project: "p", ProjectID: "id", Domain: "d", Region: "r"}
	if got := ScopeLabels(scope); !slices.Equal(got, []string{"p", "d", "r"}) {
		t.Fatalf("unexpected labels %v", got)
	}

	if got := ScopeAttrs(scope); len(got) != 8 {
		t.Fatalf("want 4 key/value pairs, got %v", got)
	}
}
