package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"zaafa/internal/auth"
	"zaafa/internal/cache"
	"zaafa/internal/domain/catalog"
	"zaafa/internal/media"
	"zaafa/internal/metrics"
	"zaafa/internal/ratelimiter"
	"zaafa/internal/sharelink"
	"zaafa/internal/store"
)

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %d\n", key, fallback)
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %t\n", key, fallback)
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %s\n", key, fallback)
		return fallback
	}
	return parsed
}

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: getEnvInt("RATELIMITER_REQUESTS_COUNT", 200),
		TimeFrame:            getEnvDuration("RATELIMITER_TIME_FRAME", 5*time.Second),
		Enabled:              getEnvBool("RATE_LIMITER_ENABLED", false),
	}
}

func LoadConfig() config {
	return config{
		addr:          getEnv("ADDR", ":8080"),
		env:           getEnv("ENV", "development"),
		apiURL:        getEnv("EXTERNAL_URL", "http://localhost:8080"),
		storefrontURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		store: store.Config{
			Driver:        getEnv("STORE_DRIVER", store.DriverPostgres),
			PostgresAddr:  os.Getenv("DB_ADDR"),
			MaxOpenConns:  getEnvInt("DB_MAX_OPEN_CONNS", 30),
			MaxIdleTime:   getEnv("DB_MAX_IDLE_TIME", "15m"),
			AutoMigrate:   getEnvBool("DB_MIGRATE", false),
			MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase: getEnv("MONGO_DB", "zaafa"),
		},
		redis: redisConfig{
			addr:     os.Getenv("REDIS_ADDR"),
			password: os.Getenv("REDIS_PASSWORD"),
			db:       getEnvInt("REDIS_DB", 0),
			ttl:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		media: mediaConfig{
			driver:        getEnv("MEDIA_DRIVER", "inline"),
			cloudinaryURL: os.Getenv("CLOUDINARY_URL"),
			folder:        getEnv("CLOUDINARY_FOLDER", "zaafa"),
			maxFileBytes:  int64(getEnvInt("MEDIA_MAX_FILE_BYTES", media.DefaultMaxFileBytes)),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			admin: adminConfig{
				enabled:      getEnvBool("ADMIN_AUTH_ENABLED", false),
				user:         os.Getenv("ADMIN_USER"),
				passwordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			},
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				exp:    getEnvDuration("AUTH_TOKEN_EXP", 24*time.Hour),
				iss:    "zaafa",
			},
		},
		share: shareConfig{
			ownerNumber: getEnv("WHATSAPP_NUMBER", "9745370909"),
			salt:        getEnv("SHARE_SALT", "zaafa"),
		},
		turnstile: turnstileConfig{
			secretKey:        os.Getenv("TURNSTILE_SECRET_KEY"),
			expectedHostname: os.Getenv("TURNSTILE_EXPECTED_HOSTNAME"),
		},
		rateLimiter: LoadRateLimiterConfig(),
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

func newMediaStore(cfg mediaConfig) (media.Store, error) {
	switch cfg.driver {
	case "cloudinary":
		return media.NewCloudinary(cfg.cloudinaryURL, cfg.folder)
	case "", "inline":
		return media.Inline{}, nil
	}
	return nil, fmt.Errorf("unknown media driver %q", cfg.driver)
}

var version = "1.0.0"

//	@title			Zaafa API
//	@description	Storefront catalog API: products, categories, brands, offers and hero images.

//	@contact.name	API Support
//	@contact.url	http://www.swagger.io/support
//	@contact.email	support@swagger.io

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath					/api
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := LoadConfig()

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	ctx := context.Background()

	// Storage
	container, err := store.NewContainer(ctx, cfg.store)
	if err != nil {
		logger.Fatal(err)
	}
	defer container.Close(context.Background())
	logger.Infow("catalog store ready", "driver", container.Driver)

	// Storefront cache
	redisCache, err := cache.NewRedis(ctx, cfg.redis.addr, cfg.redis.password, cfg.redis.db)
	if err != nil {
		logger.Fatal(err)
	}
	defer redisCache.Close()
	if redisCache.Enabled() {
		logger.Infow("redis cache enabled", "addr", cfg.redis.addr, "ttl", cfg.redis.ttl)
	}

	m := metrics.New()

	opts := []catalog.Option{}
	if redisCache.Enabled() {
		opts = append(opts, catalog.WithCache(m.InstrumentCache(redisCache), cfg.redis.ttl))
	}
	svc := catalog.NewService(container.Catalog, logger, opts...)

	mediaStore, err := newMediaStore(cfg.media)
	if err != nil {
		logger.Fatal(err)
	}

	shortLinks, err := sharelink.NewCodec(cfg.share.salt, 6)
	if err != nil {
		logger.Fatal(err)
	}

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)
	defer rateLimiter.Stop()

	// Authenticator
	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.exp,
	)
	if cfg.auth.admin.enabled && cfg.auth.token.secret == "" {
		logger.Fatal("ADMIN_AUTH_ENABLED requires AUTH_TOKEN_SECRET")
	}

	app := &application{
		config:        cfg,
		store:         container,
		catalog:       svc,
		media:         mediaStore,
		logger:        logger,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
		metrics:       m,
		shortLinks:    shortLinks,
		quit:          make(chan struct{}),
	}

	if redisCache.Enabled() && cfg.redis.ttl > 0 {
		app.warmStorefrontCacheEvery(cfg.redis.ttl)
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		return container.Stats()
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
