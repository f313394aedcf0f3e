package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/sbilibin2017/gw-wallet-ledger/docs"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/events"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/handlers"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/health"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/jwt"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/migrations"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/money"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/repositories"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config holds everything read from the environment.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int
	RedisExpSecond    int

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecretKey string
	JWTExpSecond int

	InitialBalanceMin int
	InitialBalanceMax int
	Retry             services.RetryPolicy

	HealthPort     string
	HealthInterval time.Duration
}

// @title gw-wallet-ledger API
// @version 1.0.0
// @description Custodial wallet ledger: balances, deposits and atomic transfers between users
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s, Commit: %s, Build: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and builds the
// application config. A missing file is not an error.
func parseConfig(path string) (*config, error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	var err error
	getInt := func(key, defaultValue string) int {
		if err != nil {
			return 0
		}
		var n int
		if n, err = strconv.Atoi(getEnv(key, defaultValue)); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
		}
		return n
	}
	getDuration := func(key, defaultValue string) time.Duration {
		if err != nil {
			return 0
		}
		var d time.Duration
		if d, err = time.ParseDuration(getEnv(key, defaultValue)); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
		}
		return d
	}

	cfg := &config{
		// Application
		AppHost:  getEnv("APP_HOST", "localhost"),
		AppPort:  getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("APP_LOG_LEVEL", "info"),

		// PostgreSQL
		PGHost:         getEnv("POSTGRES_HOST", "localhost"),
		PGPort:         getInt("POSTGRES_PORT", "5432"),
		PGUser:         getEnv("POSTGRES_USER", "user"),
		PGPassword:     getEnv("POSTGRES_PASSWORD", "password"),
		PGDB:           getEnv("POSTGRES_DB", "database"),
		PGMaxOpenConns: getInt("POSTGRES_MAX_OPEN_CONNS", "16"),
		PGMaxIdleConns: getInt("POSTGRES_MAX_IDLE_CONNS", "8"),

		// Redis
		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getInt("REDIS_PORT", "6379"),
		RedisDB:           getInt("REDIS_DB", "0"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisPoolSize:     getInt("REDIS_POOL_SIZE", "10"),
		RedisMinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", "2"),
		RedisExpSecond:    getInt("REDIS_EXP_SECOND", "60"),

		// Kafka, empty brokers disable publishing
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "ledger.transactions"),

		// JWT
		JWTSecretKey: getEnv("JWT_SECRET_KEY", "my_super_secret_key"),
		JWTExpSecond: getInt("JWT_EXP_SECOND", "86400"),

		// Ledger, balances in major units
		InitialBalanceMin: getInt("LEDGER_INITIAL_BALANCE_MIN", "100"),
		InitialBalanceMax: getInt("LEDGER_INITIAL_BALANCE_MAX", "10100"),
		Retry: services.RetryPolicy{
			MaxAttempts:     uint64(getInt("LEDGER_RETRY_MAX_ATTEMPTS", "5")),
			InitialInterval: getDuration("LEDGER_RETRY_INITIAL_INTERVAL", "10ms"),
			MaxInterval:     getDuration("LEDGER_RETRY_MAX_INTERVAL", "200ms"),
			MaxElapsedTime:  getDuration("LEDGER_RETRY_MAX_ELAPSED_TIME", "2s"),
		},

		// gRPC health
		HealthPort:     getEnv("GRPC_HEALTH_PORT", "50051"),
		HealthInterval: getDuration("GRPC_HEALTH_INTERVAL", "5s"),
	}
	if err != nil {
		return nil, err
	}
	if cfg.Retry.MaxAttempts == 0 {
		return nil, errors.New("LEDGER_RETRY_MAX_ATTEMPTS must be positive")
	}
	if cfg.HealthInterval <= 0 {
		return nil, errors.New("GRPC_HEALTH_INTERVAL must be positive")
	}
	if cfg.InitialBalanceMin < 0 || cfg.InitialBalanceMax < cfg.InitialBalanceMin {
		return nil, errors.New("LEDGER_INITIAL_BALANCE_MIN and LEDGER_INITIAL_BALANCE_MAX must form a non-negative range")
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// run initializes the logger, database, Redis, Kafka and the HTTP and gRPC
// health servers. It sets up routes, applies middleware, and handles
// graceful shutdown.
func run(ctx context.Context, cfg *config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infow("Logger initialized", "level", cfg.LogLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)
	logger.Log.Infow("Connecting to PostgreSQL", "host", cfg.PGHost, "port", cfg.PGPort, "db", cfg.PGDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)

	if err := migrations.Up(ctx, db.DB); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	defer rdb.Close()

	var profileCache services.ProfileCache
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Warnw("Redis not reachable, display names are read from PostgreSQL", "error", err)
	} else {
		profileCache = repositories.NewProfileCacheRepository(rdb, time.Duration(cfg.RedisExpSecond)*time.Second)
	}

	// Kafka
	var writer events.KafkaWriter
	if w := events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic); w != nil {
		writer = w
	}
	publisher := events.NewTransactionPublisher(writer)
	defer publisher.Close()

	// Initialize JWT service
	tokens := jwt.New(
		jwt.WithSecretKey(cfg.JWTSecretKey),
		jwt.WithExpiration(time.Duration(cfg.JWTExpSecond)*time.Second),
	)

	// Initialize repositories
	ledgerRepo := repositories.NewLedgerRepository(db)
	accountRepo := repositories.NewAccountRepository(db, repositories.GetTxFromContext)
	transactionRepo := repositories.NewTransactionRepository(db, repositories.GetTxFromContext)
	userReadRepo := repositories.NewUserReadRepository(db, repositories.GetTxFromContext)
	userWriteRepo := repositories.NewUserWriteRepository(db, repositories.GetTxFromContext)

	// Initialize services
	directory := services.NewAccountDirectory(accountRepo, userReadRepo, profileCache)
	authService := services.NewAuthService(
		ledgerRepo, userReadRepo, userWriteRepo, accountRepo, tokens,
		services.RandomInitialBalance(
			money.FromMajor(int64(cfg.InitialBalanceMin)),
			money.FromMajor(int64(cfg.InitialBalanceMax)),
		),
	)
	queryService := services.NewQueryService(directory, transactionRepo)
	depositService := services.NewDepositService(ledgerRepo, accountRepo, transactionRepo, publisher, cfg.Retry)
	transferService := services.NewTransferService(ledgerRepo, accountRepo, transactionRepo, directory, publisher, cfg.Retry)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/user/signup", handlers.NewRegisterHandler(authService))
		r.Post("/user/signin", handlers.NewLoginHandler(authService))
		r.Get("/user/bulk", handlers.NewSearchUsersHandler(directory))

		// Protected routes with JWT middleware
		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(tokens))
			r.Get("/account/balance", handlers.NewGetBalanceHandler(queryService, tokens))
			r.Get("/account/transactions", handlers.NewGetHistoryHandler(queryService, tokens))
			r.Post("/account/add", handlers.NewDepositHandler(depositService, tokens))
			r.Post("/account/transfer", handlers.NewTransferHandler(transferService, tokens))
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 2)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	healthServer := health.NewServer(fmt.Sprintf("%s:%s", cfg.AppHost, cfg.HealthPort), db, cfg.HealthInterval)
	go func() {
		if err := healthServer.Run(ctxShutdown); err != nil {
			errChan <- fmt.Errorf("gRPC health server failed: %w", err)
		}
	}()

	go func() {
		logger.Log.Infow("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
