// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	asynqclient "github.com/gardener/inventory-bindings/pkg/clients/asynq"
	"github.com/gardener/inventory-bindings/pkg/clients/db"
	openstackclients "github.com/gardener/inventory-bindings/pkg/clients/openstack"
	"github.com/gardener/inventory-bindings/pkg/core/pagination"
	"github.com/gardener/inventory-bindings/pkg/metrics"
	"github.com/gardener/inventory-bindings/pkg/openstack/glance"
	"github.com/gardener/inventory-bindings/pkg/openstack/models"
	openstackutils "github.com/gardener/inventory-bindings/pkg/openstack/utils"
	asynqutils "github.com/gardener/inventory-bindings/pkg/utils/asynq"
)

const (
	// TaskCollectImages is the name of the task for collecting OpenStack
	// Glance images.
	TaskCollectImages = "openstack:task:collect-images"
)

// imageResolver resolves the Glance API for a client scope.
var imageResolver glance.Resolver = glance.ClientsetResolver

// CollectImagesPayload represents the payload, which specifies
// where to collect OpenStack Glance images from.
type CollectImagesPayload struct {
	// Scope specifies the client scope for which to collect.
	Scope openstackclients.ClientScope `json:"scope" yaml:"scope"`

	// Filters specifies the optional filters for the listing.
	Filters glance.ListOptions `json:"filters" yaml:"filters"`
}

// NewCollectImagesTask creates a new [asynq.Task] for collecting OpenStack
// Glance images, without specifying a payload.
func NewCollectImagesTask() *asynq.Task {
	return asynq.NewTask(TaskCollectImages, nil)
}

// HandleCollectImagesTask handles the task for collecting OpenStack Glance
// images.
func HandleCollectImagesTask(ctx context.Context, t *asynq.Task) error {
	// If we were called without a payload, then we enqueue tasks for
	// collecting images from all configured image clients.
	data := t.Payload()
	if data == nil {
		return enqueueCollectImages(ctx)
	}

	var payload CollectImagesPayload
	if err := asynqutils.Unmarshal(data, &payload); err != nil {
		return asynqutils.SkipRetry(err)
	}

	if err := openstackutils.IsValidProjectScope(payload.Scope); err != nil {
		return asynqutils.SkipRetry(fmt.Errorf("%w: %w", ErrInvalidScope, err))
	}

	if err := payload.Filters.Validate(); err != nil {
		return asynqutils.SkipRetry(err)
	}

	return collectImages(ctx, payload)
}

// enqueueCollectImages enqueues tasks for collecting OpenStack Glance images
// from all configured image clients by creating a payload with the respective
// client scope.
func enqueueCollectImages(ctx context.Context) error {
	logger := asynqutils.GetLogger(ctx)

	if openstackclients.ImageClientset.Length() == 0 {
		logger.Warn("no OpenStack image clients found")

		return nil
	}

	queue := asynqutils.GetQueueName(ctx)

	return openstackclients.ImageClientset.Range(func(scope openstackclients.ClientScope, _ openstackclients.Client[*gophercloud.ServiceClient]) error {
		payload := CollectImagesPayload{
			Scope: scope,
		}
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Error(
				"failed to marshal payload for OpenStack images",
				"project", scope.Project,
				"domain", scope.Domain,
				"region", scope.Region,
				"reason", err,
			)

			return err
		}

		task := asynq.NewTask(TaskCollectImages, data)
		info, err := asynqclient.Client.Enqueue(task, asynq.Queue(queue))
		if err != nil {
			logger.Error(
				"failed to enqueue task",
				"type", task.Type(),
				"project", scope.Project,
				"domain", scope.Domain,
				"region", scope.Region,
				"reason", err,
			)

			return err
		}

		logger.Info(
			"enqueued task",
			"type", task.Type(),
			"id", info.ID,
			"queue", info.Queue,
			"project", scope.Project,
			"domain", scope.Domain,
			"region", scope.Region,
		)

		return nil
	})
}

// collectImages collects the OpenStack Glance images, using the client
// associated with the client scope in the given payload. Images are persisted
// one page at a time.
func collectImages(ctx context.Context, payload CollectImagesPayload) error {
	logger := asynqutils.GetLogger(ctx)
	attrs := openstackutils.ScopeAttrs(payload.Scope)

	logger.Info("collecting OpenStack images", attrs...)

	var count int64
	pager := glance.ListAllInDetail(imageResolver, payload.Scope, payload.Filters, pagination.WithStopOnDuplicateMarker())
	defer func() {
		labels := openstackutils.ScopeLabels(payload.Scope)
		key := metrics.Key(TaskCollectImages, labels...)
		metrics.DefaultCollector.AddMetric(
			key,
			prometheus.MustNewConstMetric(imagesDesc, prometheus.GaugeValue, float64(count), labels...),
		)
		metrics.DefaultCollector.AddMetric(
			metrics.Key(key, "pages"),
			prometheus.MustNewConstMetric(imagePagesDesc, prometheus.GaugeValue, float64(pager.Fetches()), labels...),
		)
	}()

	err := pager.EachPage(ctx, func(page *pagination.Page[glance.ImageDetails]) (bool, error) {
		n, err := upsertImages(ctx, toImageModels(payload.Scope, page.Items))
		if err != nil {
			logger.Error(
				"could not insert images into db",
				append(attrs, "page", pager.Fetches(), "reason", err)...,
			)

			return false, err
		}
		count += n

		return true, nil
	})

	if err != nil {
		logger.Error(
			"could not collect images",
			append(attrs, "pages", pager.Fetches(), "count", count, "reason", err)...,
		)

		if errors.Is(err, glance.ErrClientNotFound) {
			return asynqutils.SkipRetry(err)
		}

		return err
	}

	logger.Info(
		"populated openstack images",
		append(attrs, "pages", pager.Fetches(), "count", count)...,
	)

	return nil
}

// upsertImages inserts or updates the given images and returns the number of
// affected rows.
func upsertImages(ctx context.Context, items []models.Image) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	out, err := db.DB.NewInsert().
		Model(&items).
		On("CONFLICT (image_id, project_id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("domain = EXCLUDED.domain").
		Set("region = EXCLUDED.region").
		Set("status = EXCLUDED.status").
		Set("container_format = EXCLUDED.container_format").
		Set("disk_format = EXCLUDED.disk_format").
		Set("size = EXCLUDED.size").
		Set("checksum = EXCLUDED.checksum").
		Set("owner = EXCLUDED.owner").
		Set("min_disk = EXCLUDED.min_disk").
		Set("min_ram = EXCLUDED.min_ram").
		Set("is_public = EXCLUDED.is_public").
		Set("protected = EXCLUDED.protected").
		Set("image_created_at = EXCLUDED.image_created_at").
		Set("image_updated_at = EXCLUDED.image_updated_at").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return out.RowsAffected()
}

// toImageModels converts the image details into [models.Image] items of the
// given scope. Images already removed from Glance are skipped.
func toImageModels(scope openstackclients.ClientScope, images []glance.ImageDetails) []models.Image {
	items := make([]models.Image, 0, len(images))
	for _, img := range images {
		if img.Deleted {
			continue
		}

		item := models.Image{
			ImageID:         img.ID,
			Name:            img.Name,
			ProjectID:       scope.ProjectID,
			Domain:          scope.Domain,
			Region:          scope.Region,
			Status:          img.Status,
			ContainerFormat: img.ContainerFormat,
			DiskFormat:      img.DiskFormat,
			Size:            img.Size,
			Checksum:        img.Checksum,
			Owner:           img.Owner,
			MinDisk:         img.MinDisk,
			MinRAM:          img.MinRAM,
			IsPublic:        img.IsPublic,
			Protected:       img.Protected,
			TimeCreated:     img.CreatedAt,
			TimeUpdated:     img.UpdatedAt,
		}
		items = append(items, item)
	}

	return items
}
