// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package glance

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gophercloud/gophercloud/v2"

	"github.com/gardener/inventory-bindings/pkg/core/pagination"
	"github.com/gardener/inventory-bindings/pkg/utils/optional"
)

// Image statuses reported by the Glance v1 API.
const (
	StatusQueued        = "queued"
	StatusSaving        = "saving"
	StatusActive        = "active"
	StatusKilled        = "killed"
	StatusDeleted       = "deleted"
	StatusPendingDelete = "pending_delete"
)

// Image is the summary of an image as returned by the images listing.
type Image struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Links           []pagination.Link `json:"links"`
	ContainerFormat string            `json:"container_format"`
	DiskFormat      string            `json:"disk_format"`
	Size            int64             `json:"size"`
	Checksum        string            `json:"checksum"`
}

// ImageDetails is an image as returned by the detailed images listing.
type ImageDetails struct {
	Image

	Status     string                    `json:"status"`
	Location   string                    `json:"location"`
	Owner      string                    `json:"owner"`
	MinDisk    int                       `json:"min_disk"`
	MinRAM     int                       `json:"min_ram"`
	IsPublic   bool                      `json:"is_public"`
	Protected  bool                      `json:"protected"`
	Deleted    bool                      `json:"deleted"`
	Properties map[string]string         `json:"properties"`
	CreatedAt  time.Time                 `json:"-"`
	UpdatedAt  time.Time                 `json:"-"`
	DeletedAt  optional.Value[time.Time] `json:"-"`
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
func (d *ImageDetails) UnmarshalJSON(b []byte) error {
	type tmp ImageDetails
	var s struct {
		tmp
		CreatedAt string  `json:"created_at"`
		UpdatedAt string  `json:"updated_at"`
		DeletedAt *string `json:"deleted_at"`
	}

	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	*d = ImageDetails(s.tmp)

	var err error
	if d.CreatedAt, err = parseTime(s.CreatedAt); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}

	if d.UpdatedAt, err = parseTime(s.UpdatedAt); err != nil {
		return fmt.Errorf("updated_at: %w", err)
	}

	if s.DeletedAt != nil && *s.DeletedAt != "" {
		deletedAt, err := parseTime(*s.DeletedAt)
		if err != nil {
			return fmt.Errorf("deleted_at: %w", err)
		}
		d.DeletedAt = optional.Of(deletedAt)
	}

	return nil
}

// parseTime parses timestamps in RFC3339 and in the zone-less form. Zone-less
// timestamps are in UTC. Fractional seconds are accepted in both forms.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}

	return time.Parse(gophercloud.RFC3339NoZ, s)
}
