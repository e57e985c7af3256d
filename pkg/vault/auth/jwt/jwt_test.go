// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package jwt

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		desc          string
		roleName      string
		opts          []Option
		wantErr       error
		wantLoginPath string
	}{
		{
			desc:     "no role name",
			roleName: "",
			opts:     []Option{WithTokenPath("/var/run/secrets/token")},
			wantErr:  ErrNoRoleName,
		},
		{
			desc:     "no token path",
			roleName: "inventory",
			wantErr:  ErrNoTokenPath,
		},
		{
			desc:          "default mount path",
			roleName:      "inventory",
			opts:          []Option{WithTokenPath("/var/run/secrets/token")},
			wantLoginPath: "auth/jwt/login",
		},
		{
			desc:     "custom mount path",
			roleName: "inventory",
			opts: []Option{
				WithTokenPath("/var/run/secrets/token"),
				WithMountPath("jwt-garden"),
			},
			wantLoginPath: "auth/jwt-garden/login",
		},
		{
			desc:     "empty mount path keeps the default",
			roleName: "inventory",
			opts: []Option{
				WithTokenPath("/var/run/secrets/token"),
				WithMountPath(""),
			},
			wantLoginPath: "auth/jwt/login",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			auth, err := New(tc.roleName, tc.opts...)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}

			if tc.wantErr != nil {
				return
			}

			if got := auth.LoginPath(); got != tc.wantLoginPath {
				t.Fatalf("want login path %q, got %q", tc.wantLoginPath, got)
			}
		})
	}
}
