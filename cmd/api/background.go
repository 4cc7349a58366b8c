package main

import (
	"context"
	"fmt"
	"time"

	"zaafa/internal/domain/catalog"
	"zaafa/internal/media"
)

// background runs fn on its own goroutine. Panics are logged, not propagated,
// and run waits for outstanding tasks before returning.
func (app *application) background(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				app.logger.Errorw("background task panicked", "error", fmt.Sprint(err))
			}
		}()
		fn()
	}()
}

// discardLater deletes replaced or orphaned images once the response is written.
func (app *application) discardLater(refs ...string) {
	var keep []string
	for _, ref := range refs {
		if ref != "" {
			keep = append(keep, ref)
		}
	}
	if len(keep) == 0 {
		return
	}
	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		media.Discard(ctx, app.media, keep...)
		app.logger.Infow("discarded images", "count", len(keep))
	})
}

// warmStorefrontCache reloads the public lists so a storefront visit after a
// TTL expiry does not hit the database.
func (app *application) warmStorefrontCache(ctx context.Context) {
	loaders := map[string]func(context.Context) error{
		"categories": func(ctx context.Context) error {
			_, err := app.catalog.ListCategories(ctx, catalog.AudiencePublic)
			return err
		},
		"brands": func(ctx context.Context) error {
			_, err := app.catalog.ListBrands(ctx, catalog.AudiencePublic)
			return err
		},
		"offers": func(ctx context.Context) error {
			_, err := app.catalog.ListOffers(ctx, catalog.AudiencePublic)
			return err
		},
		"hero_images": func(ctx context.Context) error {
			_, err := app.catalog.ListHeroImages(ctx, catalog.AudiencePublic)
			return err
		},
	}
	for name, load := range loaders {
		if err := load(ctx); err != nil {
			app.logger.Errorf("Error warming %s cache: %v", name, err)
		}
	}
}

func (app *application) warmStorefrontCacheEvery(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Run once immediately
		app.warmStorefrontCache(context.Background())
		app.logger.Infof("Warmed storefront cache at %s", time.Now().Format(time.RFC1123))

		for {
			select {
			case <-app.quit:
				return
			case <-ticker.C:
				app.warmStorefrontCache(context.Background())
			}
		}
	}()
}
