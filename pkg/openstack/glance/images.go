// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package glance provides the listing of images from the OpenStack Image
// Service v1 API.
package glance

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"

	openstackclients "github.com/gardener/inventory-bindings/pkg/clients/openstack"
	"github.com/gardener/inventory-bindings/pkg/core/pagination"
	coretasks "github.com/gardener/inventory-bindings/pkg/core/tasks"
)

// ErrClientNotFound is returned when no image client is configured for a
// scope.
var ErrClientNotFound = coretasks.ErrClientNotFound

// NewImageV1 creates a [gophercloud.ServiceClient] for the v1 Image Service.
func NewImageV1(provider *gophercloud.ProviderClient, eo gophercloud.EndpointOpts) (*gophercloud.ServiceClient, error) {
	// The v2 constructor resolves the same catalog entry
	sc, err := openstack.NewImageV2(provider, eo)
	if err != nil {
		return nil, err
	}
	sc.ResourceBase = sc.Endpoint + "v1/"

	return sc, nil
}

// ImageAPI lists images from the v1 Image Service.
type ImageAPI struct {
	client *gophercloud.ServiceClient
}

// NewImageAPI returns an [ImageAPI] using the given service client.
func NewImageAPI(client *gophercloud.ServiceClient) *ImageAPI {
	return &ImageAPI{client: client}
}

// ListInDetail returns a single page of images with their details.
func (a *ImageAPI) ListInDetail(ctx context.Context, opts ListOptions) (*pagination.Page[ImageDetails], error) {
	return listPage[ImageDetails](ctx, a.client, a.client.ServiceURL("images", "detail"), opts)
}

// List returns a single page of image summaries.
func (a *ImageAPI) List(ctx context.Context, opts ListOptions) (*pagination.Page[Image], error) {
	return listPage[Image](ctx, a.client, a.client.ServiceURL("images"), opts)
}

// imagesResponse is the envelope of the images listings.
type imagesResponse[T any] struct {
	Images []T               `json:"images"`
	Links  []pagination.Link `json:"images_links"`
}

func listPage[T any](ctx context.Context, client *gophercloud.ServiceClient, url string, opts ListOptions) (*pagination.Page[T], error) {
	query, err := opts.ToImageListQuery()
	if err != nil {
		return nil, err
	}

	var body imagesResponse[T]
	_, err = client.Get(ctx, url+query, &body, &gophercloud.RequestOpts{
		OkCodes: []int{http.StatusOK},
	})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	page := &pagination.Page[T]{
		Items: body.Images,
		Links: body.Links,
	}

	return page, nil
}

// Resolver returns the [ImageAPI] for the given scope.
type Resolver func(scope openstackclients.ClientScope) (*ImageAPI, error)

// ClientsetResolver resolves the [ImageAPI] from the registered image clients.
func ClientsetResolver(scope openstackclients.ClientScope) (*ImageAPI, error) {
	client, ok := openstackclients.ImageClientset.Get(scope)
	if !ok {
		return nil, coretasks.ClientNotFound("image", scope.String())
	}

	return NewImageAPI(client.Client), nil
}

// MarkerToNext returns the continuation for listing image details. The scope
// is resolved once and every page is requested with a copy of opts, in which
// only the marker differs.
func MarkerToNext(resolver Resolver, opts ListOptions) pagination.MarkerToNextFunc[openstackclients.ClientScope, ImageDetails] {
	return markerToNext(resolver, opts, (*ImageAPI).ListInDetail)
}

// SummaryMarkerToNext is like [MarkerToNext], but for image summaries.
func SummaryMarkerToNext(resolver Resolver, opts ListOptions) pagination.MarkerToNextFunc[openstackclients.ClientScope, Image] {
	return markerToNext(resolver, opts, (*ImageAPI).List)
}

func markerToNext[T any](
	resolver Resolver,
	opts ListOptions,
	list func(*ImageAPI, context.Context, ListOptions) (*pagination.Page[T], error),
) pagination.MarkerToNextFunc[openstackclients.ClientScope, T] {
	return func(scope openstackclients.ClientScope) (pagination.NextFunc[T], error) {
		api, err := resolver(scope)
		if err != nil {
			return nil, err
		}

		next := func(ctx context.Context, marker string) (*pagination.Page[T], error) {
			return list(api, ctx, opts.WithMarker(marker))
		}

		return next, nil
	}
}

// ListAllInDetail returns a lazy pager over the details of all images in the
// given scope, which match opts.
func ListAllInDetail(resolver Resolver, scope openstackclients.ClientScope, opts ListOptions, pagerOpts ...pagination.Option) *pagination.Pager[ImageDetails] {
	return pagination.ForScope(scope, MarkerToNext(resolver, opts), pagerOpts...)
}

// ListAll returns a lazy pager over the summaries of all images in the given
// scope, which match opts.
func ListAll(resolver Resolver, scope openstackclients.ClientScope, opts ListOptions, pagerOpts ...pagination.Option) *pagination.Pager[Image] {
	return pagination.ForScope(scope, SummaryMarkerToNext(resolver, opts), pagerOpts...)
}
