package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aarogyam/aarogyam/internal/config"
	"github.com/aarogyam/aarogyam/internal/handlers"
	"github.com/aarogyam/aarogyam/internal/routes"
	"github.com/aarogyam/aarogyam/internal/services"
	"github.com/aarogyam/aarogyam/internal/storage"
	"github.com/aarogyam/aarogyam/internal/web"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "aarogyam",
		Short:         "Aarogyam clinic appointments and records server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		logger := newLogger(os.Getenv("ENV"))
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "" || env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// loadConfig reads and validates configuration; memory forces the in-memory store.
func loadConfig(memory bool) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := newLogger(cfg.Env)
	if memory {
		cfg.Store = config.StoreMemory
		if cfg.StorageBackend == config.StorageGridFS {
			logger.Warn().Msg("gridfs needs mongo, using local uploads")
			cfg.StorageBackend = config.StorageLocal
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, logger, err
	}
	return cfg, logger, nil
}

func serveCmd() *cobra.Command {
	var memory, seed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(memory)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, logger, seed)
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "keep all data in memory")
	cmd.Flags().BoolVar(&seed, "seed", false, "load demo accounts before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(false)
			if err != nil {
				return err
			}
			if cfg.Store != config.StoreMongo {
				return errors.New("migrate requires STORE=mongo")
			}
			b, err := openBackend(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer b.close()
			if err := b.migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Info().Str("database", cfg.MongoDatabase).Msg("indexes ready")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo doctors, patients, slots and health records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(false)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer b.close()
			return runSeed(cmd.Context(), cfg, b, logger, days)
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "days of availability to publish")
	return cmd
}

func runSeed(ctx context.Context, cfg *config.Config, b *backend, logger zerolog.Logger, days int) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	auth := services.NewAuthService(b.store.Doctors, b.store.Patients, cfg.JWTSecret, cfg.SessionTTL, cfg.BcryptCost, logger)
	res, err := services.NewSeeder(auth, b.store, loc, logger).Seed(ctx, days)
	if err != nil {
		return err
	}
	logger.Info().
		Int("doctors", res.Doctors).
		Int("patients", res.Patients).
		Int("health_records", res.HealthRecords).
		Str("password", services.SeedPassword).
		Msg("demo data loaded")
	return nil
}

func runServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger, seed bool) error {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()
	if err := b.migrate(ctx); err != nil {
		return err
	}
	if seed {
		if err := runSeed(ctx, cfg, b, logger, 7); err != nil {
			return err
		}
	}

	uploader := storage.NewUploader(b.files, cfg.MaxUploadBytes)
	auth := services.NewAuthService(b.store.Doctors, b.store.Patients, cfg.JWTSecret, cfg.SessionTTL, cfg.BcryptCost, logger)
	notifier := services.NewNotificationService(cfg.TextbeltURL, cfg.TextbeltAPIKey, loc, logger)
	if cfg.TextbeltAPIKey == "" {
		logger.Info().Msg("TEXTBELT_API_KEY not set, SMS notifications disabled")
	}

	h := handlers.NewHandler(handlers.Deps{
		Auth:         auth,
		Appointments: services.NewAppointmentService(b.store, uploader, notifier, loc, logger),
		Records:      services.NewRecordService(b.store, uploader, logger),
		Profiles:     services.NewProfileService(b.store, uploader, loc, logger),
		Certificates: services.NewCertificateService(b.store, cfg.CertificateDir, loc, logger),
		Uploader:     uploader,
		Files:        b.streamer,
		Ping:         b.ping,
		Location:     loc,
		Logger:       logger,
		CookieSecure: cfg.CookieSecure,
	})

	pages, err := web.NewRenderer(loc)
	if err != nil {
		return err
	}
	engine, err := routes.NewRouter(cfg, h, auth, pages, logger)
	if err != nil {
		return err
	}

	srv := routes.Server(":"+cfg.Port, engine)
	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("store", cfg.Store).
			Str("storage", cfg.StorageBackend).
			Str("timezone", loc.String()).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
