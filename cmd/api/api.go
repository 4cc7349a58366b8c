package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"zaafa/docs" //this is required to generate swagger docs
	"zaafa/internal/auth"
	"zaafa/internal/domain/catalog"
	"zaafa/internal/media"
	"zaafa/internal/metrics"
	"zaafa/internal/ratelimiter"
	"zaafa/internal/sharelink"
	"zaafa/internal/store"
)

type application struct {
	config        config
	store         *store.Container
	catalog       *catalog.Service
	media         media.Store
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	metrics       *metrics.Metrics
	shortLinks    *sharelink.Codec
	wg            sync.WaitGroup
	quit          chan struct{}
}

type config struct {
	addr          string
	env           string
	apiURL        string
	storefrontURL string
	store         store.Config
	redis         redisConfig
	media         mediaConfig
	auth          authConfig
	share         shareConfig
	turnstile     turnstileConfig
	rateLimiter   ratelimiter.Config
}

type redisConfig struct {
	addr     string
	password string
	db       int
	ttl      time.Duration
}

type mediaConfig struct {
	driver        string
	cloudinaryURL string
	folder        string
	maxFileBytes  int64
}

type authConfig struct {
	basic basicConfig
	admin adminConfig
	token tokenConfig
}

type basicConfig struct {
	user string
	pass string
}

type adminConfig struct {
	enabled      bool
	user         string
	passwordHash string
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
}

type shareConfig struct {
	ownerNumber string
	salt        string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Use(app.RateLimiterMiddleware)

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	// link previews for chat apps
	r.Get("/share/{id}", app.shareProductHandler)
	r.Get("/s/{code}", app.shortLinkHandler)

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/v1/swagger/doc.json", app.config.apiURL)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/admin/login", app.adminLoginHandler)
		r.Get("/search", app.searchHandler)

		r.Route("/products", func(r chi.Router) {
			r.Get("/user", app.listPublicProductsHandler)
			r.Get("/{id}", app.getProductHandler)
			r.Get("/{id}/related", app.relatedProductsHandler)
			r.Get("/{id}/whatsapp", app.whatsAppLinkHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AdminOnly)
				r.Get("/", app.listProductsHandler)
				r.Post("/", app.createProductHandler)
				r.Put("/{id}", app.updateProductHandler)
				r.Patch("/{id}/status", app.setProductStatusHandler)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/user", app.listPublicCategoriesHandler)
			r.Get("/{id}", app.getCategoryHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AdminOnly)
				r.Get("/", app.listCategoriesHandler)
				r.Post("/", app.createCategoryHandler)
				r.Put("/{id}", app.updateCategoryHandler)
				r.Patch("/{id}/status", app.setCategoryStatusHandler)
			})
		})

		r.Route("/brands", func(r chi.Router) {
			r.Get("/user", app.listPublicBrandsHandler)
			r.Get("/{id}", app.getBrandHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AdminOnly)
				r.Get("/", app.listBrandsHandler)
				r.Post("/", app.createBrandHandler)
				r.Put("/{id}", app.updateBrandHandler)
				r.Patch("/{id}/status", app.setBrandStatusHandler)
			})
		})

		r.Route("/offers", func(r chi.Router) {
			r.Get("/user", app.listPublicOffersHandler)
			r.Get("/{id}", app.getOfferHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AdminOnly)
				r.Get("/", app.listOffersHandler)
				r.Post("/", app.createOfferHandler)
				r.Put("/{id}", app.updateOfferHandler)
				r.Patch("/{id}/toggle", app.toggleOfferHandler)
			})
		})

		r.Route("/hero-images", func(r chi.Router) {
			r.Get("/user", app.listPublicHeroImagesHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AdminOnly)
				r.Get("/", app.listHeroImagesHandler)
				r.Post("/", app.createHeroImageHandler)
				r.Patch("/{id}/toggle", app.toggleHeroImageHandler)
			})
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/api"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 30,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		if app.quit != nil {
			close(app.quit)
		}
		err := srv.Shutdown(ctx)
		app.logger.Infow("waiting for background tasks")
		app.wg.Wait()
		shutdown <- err
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env, "store", app.store.Driver)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
