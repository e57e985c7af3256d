// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package models

import (
	"time"

	"github.com/uptrace/bun"

	coremodels "github.com/gardener/inventory-bindings/pkg/core/models"
	"github.com/gardener/inventory-bindings/pkg/core/registry"
)

// Image represents an OpenStack Glance Image.
type Image struct {
	bun.BaseModel `bun:"table:openstack_glance_image"`
	coremodels.Model

	ImageID         string    `bun:"image_id,notnull,unique:openstack_glance_image_key"`
	Name            string    `bun:"name,notnull"`
	ProjectID       string    `bun:"project_id,notnull,unique:openstack_glance_image_key"`
	Domain          string    `bun:"domain,notnull"`
	Region          string    `bun:"region,notnull"`
	Status          string    `bun:"status,notnull"`
	ContainerFormat string    `bun:"container_format,notnull"`
	DiskFormat      string    `bun:"disk_format,notnull"`
	Size            int64     `bun:"size,notnull"`
	Checksum        string    `bun:"checksum,notnull"`
	Owner           string    `bun:"owner,notnull"`
	MinDisk         int       `bun:"min_disk,notnull"`
	MinRAM          int       `bun:"min_ram,notnull"`
	IsPublic        bool      `bun:"is_public,notnull"`
	Protected       bool      `bun:"protected,notnull"`
	TimeCreated     time.Time `bun:"image_created_at,notnull"`
	TimeUpdated     time.Time `bun:"image_updated_at,notnull"`
}

func init() {
	// Register the models with the default registry
	registry.ModelRegistry.MustRegister("openstack:model:glance_image", &Image{})
}
