// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package pagination turns APIs, which return pages of items linked by an
// opaque marker, into a single lazy sequence of items.
//
// A page carries its items and a set of links. The link with the `next'
// relation points to the following page and its `marker' query parameter is
// the token for requesting it. A page without such a link is the last one.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
)

// ErrExhausted is returned by [Pager.NextPage] when there are no more pages.
var ErrExhausted = errors.New("no more pages")

// ErrMalformedMarker is returned when a page carries a `next' link, from which
// a marker cannot be extracted.
var ErrMalformedMarker = errors.New("malformed pagination marker")

const (
	// RelNext is the relation of a link pointing to the next page.
	RelNext = "next"

	// RelPrevious is the relation of a link pointing to the previous page.
	RelPrevious = "previous"

	// RelSelf is the relation of a link pointing to the resource itself.
	RelSelf = "self"

	// RelBookmark is the relation of a permanent link to the resource.
	RelBookmark = "bookmark"

	// MarkerParam is the name of the query parameter carrying the marker.
	MarkerParam = "marker"
)

// Link describes a link attached to a page or a resource.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
	Type string `json:"type,omitempty"`
}

// Page is a single page of items.
type Page[T any] struct {
	// Items are the items of the page in the order returned by the server.
	Items []T

	// Links are the pagination links of the page.
	Links []Link
}

// NextMarker returns the marker for the page following p. The boolean result
// is false when p is the last page. An error is returned when a `next' link is
// present, but does not carry a usable marker.
func (p *Page[T]) NextMarker() (string, bool, error) {
	if p == nil {
		return "", false, nil
	}

	for _, link := range p.Links {
		if link.Rel != RelNext {
			continue
		}

		u, err := url.Parse(link.Href)
		if err != nil {
			return "", false, fmt.Errorf("%w: %w", ErrMalformedMarker, err)
		}

		marker := u.Query().Get(MarkerParam)
		if marker == "" {
			return "", false, fmt.Errorf("%w: no %s in %q", ErrMalformedMarker, MarkerParam, link.Href)
		}

		return marker, true, nil
	}

	return "", false, nil
}

// NextFunc fetches the page identified by marker. The empty marker denotes the
// first page.
type NextFunc[T any] func(ctx context.Context, marker string) (*Page[T], error)

// MarkerToNextFunc returns the [NextFunc] for the given scope, e.g. a region
// or a project. It is called once per [Pager] and the returned [NextFunc] is
// reused for every page.
type MarkerToNextFunc[S, T any] func(scope S) (NextFunc[T], error)

// Option configures a [Pager].
type Option func(o *options)

type options struct {
	stopOnDuplicateMarker bool
}

// WithStopOnDuplicateMarker makes the [Pager] stop, when a page points to the
// same marker as the one used to fetch it.
func WithStopOnDuplicateMarker() Option {
	return func(o *options) {
		o.stopOnDuplicateMarker = true
	}
}

// Pager fetches pages on demand. A Pager is forward-only and cannot be
// restarted. It is not safe for concurrent use, but independent pagers may be
// used from separate goroutines.
type Pager[T any] struct {
	opts    options
	resolve func() (NextFunc[T], error)
	next    NextFunc[T]
	first   *Page[T]
	marker  string
	done    bool
	fetches int
}

// New creates a [Pager], which starts with the first page returned by next.
// No request is made until the first page is requested.
func New[T any](next NextFunc[T], opts ...Option) *Pager[T] {
	p := &Pager[T]{next: next}
	p.apply(opts)

	return p
}

// FromPage creates a [Pager] from an already fetched first page. The
// following pages are fetched with next. A first page without items and
// without a `next' link yields an already exhausted pager.
func FromPage[T any](first *Page[T], next NextFunc[T], opts ...Option) *Pager[T] {
	p := &Pager[T]{first: first, next: next}
	p.apply(opts)

	if first == nil || len(first.Items) == 0 {
		if _, ok, err := first.NextMarker(); err == nil && !ok {
			p.first = nil
			p.done = true
		}
	}

	return p
}

// ForScope creates a [Pager] bound to the given scope. The scope is captured
// once and markerToNext is invoked lazily on the first request.
func ForScope[S, T any](scope S, markerToNext MarkerToNextFunc[S, T], opts ...Option) *Pager[T] {
	p := &Pager[T]{
		resolve: func() (NextFunc[T], error) {
			return markerToNext(scope)
		},
	}
	p.apply(opts)

	return p
}

func (p *Pager[T]) apply(opts []Option) {
	for _, opt := range opts {
		opt(&p.opts)
	}
}

// HasMorePages returns true, if there are more pages to be fetched.
func (p *Pager[T]) HasMorePages() bool {
	return !p.done
}

// Fetches returns the number of page requests issued so far.
func (p *Pager[T]) Fetches() int {
	return p.fetches
}

// NextPage returns the next page. It returns [ErrExhausted] after the last page
// has been returned. Errors from fetching a page are returned unchanged and
// leave the pager in its current state.
func (p *Pager[T]) NextPage(ctx context.Context) (*Page[T], error) {
	if p.done {
		return nil, ErrExhausted
	}

	page, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}

	marker, ok, err := page.NextMarker()
	switch {
	case err != nil:
		p.done = true

		return nil, err
	case !ok:
		p.done = true
	case p.opts.stopOnDuplicateMarker && marker == p.marker:
		p.done = true
	default:
		p.marker = marker
	}

	return page, nil
}

func (p *Pager[T]) fetch(ctx context.Context) (*Page[T], error) {
	if p.first != nil {
		page := p.first
		p.first = nil

		return page, nil
	}

	if p.next == nil {
		if p.resolve == nil {
			return nil, errors.New("pagination: no next function configured")
		}
		next, err := p.resolve()
		if err != nil {
			return nil, err
		}
		p.next = next
		p.resolve = nil
	}

	p.fetches++
	page, err := p.next(ctx, p.marker)
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = &Page[T]{}
	}

	return page, nil
}

// EachPage calls fn for each remaining page. Iteration stops when fn returns
// false or an error, or when there are no more pages.
func (p *Pager[T]) EachPage(ctx context.Context, fn func(page *Page[T]) (bool, error)) error {
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return err
		}

		ok, err := fn(page)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	return nil
}

// All returns an iterator over the remaining items. Pages are fetched as the
// iterator advances. An error ends the sequence and is yielded with the zero
// value of T. Items of a page, which was left early, are not revisited.
func (p *Pager[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				var zero T
				yield(zero, err)

				return
			}

			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// Collect fetches all remaining pages and returns their items.
func (p *Pager[T]) Collect(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	for item, err := range p.All(ctx) {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}
