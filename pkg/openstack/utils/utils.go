// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package utils provides helpers for working with OpenStack client scopes.
package utils

import (
	"errors"

	openstackclients "github.com/gardener/inventory-bindings/pkg/clients/openstack"
)

var (
	// ErrMissingRegion is returned for scopes without region.
	ErrMissingRegion = errors.New("missing region")

	// ErrMissingDomain is returned for scopes without domain.
	ErrMissingDomain = errors.New("missing domain")

	// ErrMissingCredentials is returned for scopes without named
	// credentials.
	ErrMissingCredentials = errors.New("missing named credentials")

	// ErrMissingProject is returned for project scopes without project
	// name.
	ErrMissingProject = errors.New("missing project name")

	// ErrMissingProjectID is returned for project scopes without project
	// ID.
	ErrMissingProjectID = errors.New("missing project ID")
)

// IsValidDomainScope checks that the scope can be used on the domain level.
// All missing fields are reported.
func IsValidDomainScope(scope openstackclients.ClientScope) error {
	var errs []error
	if scope.Region == "" {
		errs = append(errs, ErrMissingRegion)
	}

	if scope.Domain == "" {
		errs = append(errs, ErrMissingDomain)
	}

	if scope.NamedCredentials == "" {
		errs = append(errs, ErrMissingCredentials)
	}

	return errors.Join(errs...)
}

// IsValidProjectScope checks that the scope can be used on the project level,
// which is the level image clients are created for. All missing fields are
// reported.
func IsValidProjectScope(scope openstackclients.ClientScope) error {
	errs := []error{IsValidDomainScope(scope)}
	if scope.Project == "" {
		errs = append(errs, ErrMissingProject)
	}

	if scope.ProjectID == "" {
		errs = append(errs, ErrMissingProjectID)
	}

	return errors.Join(errs...)
}

// ScopeLabels returns the metric label values of a project scope: project,
// domain and region.
func ScopeLabels(scope openstackclients.ClientScope) []string {
	return []string{scope.Project, scope.Domain, scope.Region}
}

// ScopeAttrs returns the log attributes of a project scope.
func ScopeAttrs(scope openstackclients.ClientScope) []any {
	return []any{
		"project", scope.Project,
		"project_id", scope.ProjectID,
		"domain", scope.Domain,
		"region", scope.Region,
	}
}
