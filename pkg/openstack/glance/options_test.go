// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package glance

import (
	"errors"
	"net/url"
	"testing"
)

func TestToImageListQuery(t *testing.T) {
	testCases := []struct {
		desc    string
		opts    ListOptions
		want    url.Values
		wantErr bool
	}{
		{
			desc: "empty options",
			opts: ListOptions{},
			want: url.Values{},
		},
		{
			desc: "filters and marker",
			opts: ListOptions{Marker: "m", Limit: 10, Status: StatusActive, SortDir: SortDesc},
			want: url.Values{
				"marker":   []string{"m"},
				"limit":    []string{"10"},
				"status":   []string{"active"},
				"sort_dir": []string{"desc"},
			},
		},
		{
			desc:    "negative limit",
			opts:    ListOptions{Limit: -1},
			wantErr: true,
		},
		{
			desc:    "inverted size range",
			opts:    ListOptions{SizeMin: 10, SizeMax: 5},
			wantErr: true,
		},
		{
			desc:    "unknown sort direction",
			opts:    ListOptions{SortDir: "up"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			query, err := tc.opts.ToImageListQuery()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidListOptions) {
					t.Fatalf("want ErrInvalidListOptions, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			u, err := url.Parse(query)
			if err != nil {
				t.Fatalf("unparsable query %q: %s", query, err)
			}

			if got := u.Query(); got.Encode() != tc.want.Encode() {
				t.Fatalf("want query %q, got %q", tc.want.Encode(), got.Encode())
			}
		})
	}
}

func TestWithMarkerCopies(t *testing.T) {
	opts := ListOptions{Limit: 5}
	next := opts.WithMarker("m")

	if opts.Marker != "" {
		t.Fatal("WithMarker must not modify the receiver")
	}

	if next.Marker != "m" || next.Limit != 5 {
		t.Fatalf("unexpected options %+v", next)
	}
}
