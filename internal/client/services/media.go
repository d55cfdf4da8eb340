package services

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/dmitrijs2005/gridplanner/internal/client/client"
	"github.com/dmitrijs2005/gridplanner/internal/client/models"
	"github.com/dmitrijs2005/gridplanner/internal/filex"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	"github.com/dmitrijs2005/gridplanner/internal/netx"
)

// MediaService attaches images to items. Every step's failure is returned
// to the caller; nothing is retried silently.
type MediaService interface {
	Attach(ctx context.Context, containerID, itemID, path string) (string, error)
	Detach(ctx context.Context, containerID, itemID, key string) error
	URL(ctx context.Context, key string) (string, error)
}

type mediaService struct {
	client client.Client
	grids  GridService
	http   *http.Client
	logger logging.Logger
}

func NewMediaService(c client.Client, grids GridService, httpClient *http.Client, logger logging.Logger) MediaService {
	return &mediaService{client: c, grids: grids, http: httpClient, logger: logger.With("service", "media")}
}

// Attach uploads the image at path and appends its key to the item.
func (m *mediaService) Attach(ctx context.Context, containerID, itemID, path string) (string, error) {
	img, err := filex.OpenImage(path)
	if err != nil {
		return "", err
	}
	defer img.File.Close()

	signed, err := m.client.UploadURL(ctx, containerID, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("get upload url: %w", err)
	}
	if err := netx.PutPresigned(ctx, m.http, signed.URL, img.ContentType, img.File, img.Size); err != nil {
		return "", err
	}

	objects, err := m.client.ListObjects(ctx, containerID)
	if err != nil {
		return "", fmt.Errorf("verify upload: %w", err)
	}
	if !slices.ContainsFunc(objects, func(o models.Object) bool { return o.Key == signed.Key }) {
		return "", fmt.Errorf("uploaded object %s is not in storage", signed.Key)
	}
	m.logger.Debug(ctx, "image uploaded", "key", signed.Key, "size", img.Size)

	err = m.grids.Edit(ctx, containerID, itemID, func(p *grid.Payload) error {
		p.ImageKeys = append(p.ImageKeys, signed.Key)
		return nil
	})
	if err != nil {
		return signed.Key, fmt.Errorf("attach %s: %w", signed.Key, err)
	}
	return signed.Key, nil
}

// Detach removes key from the item and then deletes the stored object.
func (m *mediaService) Detach(ctx context.Context, containerID, itemID, key string) error {
	err := m.grids.Edit(ctx, containerID, itemID, func(p *grid.Payload) error {
		i := slices.Index(p.ImageKeys, key)
		if i < 0 {
			return fmt.Errorf("image %s is not attached to %s", key, itemID)
		}
		p.ImageKeys = slices.Delete(p.ImageKeys, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}
	if err := m.client.DeleteObject(ctx, key); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (m *mediaService) URL(ctx context.Context, key string) (string, error) {
	signed, err := m.client.DownloadURL(ctx, key)
	if err != nil {
		return "", err
	}
	return signed.URL, nil
}
