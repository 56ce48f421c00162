package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

const defaultImageConcurrency = 4

// imageFetcher resolves the first image of many products with a bounded
// number of concurrent requests. A failed lookup leaves that product
// without an image.
type imageFetcher struct {
	images clients.ImageClient
	limit  int
	logger *logging.Logger
}

func newImageFetcher(images clients.ImageClient, limit int) *imageFetcher {
	if limit <= 0 {
		limit = defaultImageConcurrency
	}
	return &imageFetcher{
		images: images,
		limit:  limit,
		logger: logging.New("image-fetcher"),
	}
}

// firstURLs returns productID -> first image URL for the given products.
func (f *imageFetcher) firstURLs(ctx context.Context, productIDs []int64) map[int64]string {
	urls := make(map[int64]string, len(productIDs))
	if f == nil || f.images == nil || len(productIDs) == 0 {
		return urls
	}

	var mu sync.Mutex
	seen := make(map[int64]struct{}, len(productIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.limit)

	for _, id := range productIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		productID := id
		g.Go(func() error {
			imgs, err := f.images.ListByProduct(gctx, productID)
			if err != nil {
				f.logger.Debug("Image lookup failed", logging.Fields{
					"product_id": productID,
					"error":      err.Error(),
				})
				return nil
			}
			if url := models.FirstImageURL(imgs); url != "" {
				mu.Lock()
				urls[productID] = url
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	return urls
}

// cartWithImages fills ImageURL on each cart line.
func (f *imageFetcher) cartWithImages(ctx context.Context, items []models.CartItem) []models.CartItem {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.ImageURL == "" {
			ids = append(ids, item.ProductID)
		}
	}

	urls := f.firstURLs(ctx, ids)
	for i := range items {
		if items[i].ImageURL == "" {
			items[i].ImageURL = urls[items[i].ProductID]
		}
	}
	return items
}
