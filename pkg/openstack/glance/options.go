// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package glance

import (
	"errors"

	"github.com/gophercloud/gophercloud/v2"
)

// ErrInvalidListOptions is returned for list options, which cannot be sent to
// the API.
var ErrInvalidListOptions = errors.New("invalid image list options")

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListOptions specifies the query parameters for listing images. Zero values
// are not sent.
type ListOptions struct {
	// Marker is the ID of the last image of the previous page. It is managed
	// by the pager and should not be set for listing all images.
	Marker string `q:"marker" json:"-" yaml:"-"`

	// Limit is the maximum number of images per page.
	Limit int `q:"limit" json:"limit,omitempty" yaml:"limit,omitempty"`

	Name            string `q:"name" json:"name,omitempty" yaml:"name,omitempty"`
	Status          string `q:"status" json:"status,omitempty" yaml:"status,omitempty"`
	ContainerFormat string `q:"container_format" json:"container_format,omitempty" yaml:"container_format,omitempty"`
	DiskFormat      string `q:"disk_format" json:"disk_format,omitempty" yaml:"disk_format,omitempty"`
	SizeMin         int    `q:"size_min" json:"size_min,omitempty" yaml:"size_min,omitempty"`
	SizeMax         int    `q:"size_max" json:"size_max,omitempty" yaml:"size_max,omitempty"`
	SortKey         string `q:"sort_key" json:"sort_key,omitempty" yaml:"sort_key,omitempty"`
	SortDir         string `q:"sort_dir" json:"sort_dir,omitempty" yaml:"sort_dir,omitempty"`
}

// Validate checks the options for values rejected by the API.
func (opts ListOptions) Validate() error {
	if opts.Limit < 0 {
		return errors.Join(ErrInvalidListOptions, errors.New("negative limit"))
	}

	if opts.SizeMin < 0 || opts.SizeMax < 0 {
		return errors.Join(ErrInvalidListOptions, errors.New("negative size filter"))
	}

	if opts.SizeMax > 0 && opts.SizeMin > opts.SizeMax {
		return errors.Join(ErrInvalidListOptions, errors.New("size_min exceeds size_max"))
	}

	switch opts.SortDir {
	case "", SortAsc, SortDesc:
	default:
		return errors.Join(ErrInvalidListOptions, errors.New("unknown sort direction"))
	}

	return nil
}

// WithMarker returns a copy of the options with the given marker.
func (opts ListOptions) WithMarker(marker string) ListOptions {
	opts.Marker = marker

	return opts
}

// ToImageListQuery formats the options into a query string.
func (opts ListOptions) ToImageListQuery() (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	q, err := gophercloud.BuildQueryString(opts)
	if err != nil {
		return "", err
	}

	return q.String(), nil
}
