package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/careconnect/careconnect/internal/config"
	"github.com/careconnect/careconnect/internal/domain/account"
	"github.com/careconnect/careconnect/internal/platform/auth"
	"github.com/careconnect/careconnect/internal/platform/blobstore"
	"github.com/careconnect/careconnect/internal/platform/db"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "careconnect-server",
		Short: "CareConnect clinical records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withPool(func(ctx context.Context, cfg *config.Config, d deps) error {
				count, err := db.NewMigrator(d.pool, migrationsDir(dir, cfg)).Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withPool(func(ctx context.Context, cfg *config.Config, d deps) error {
				statuses, err := db.NewMigrator(d.pool, migrationsDir(dir, cfg)).Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				fmt.Println("---------- ---------------------------------------- ---------- --------------------")
				for _, s := range statuses {
					status := "pending"
					appliedAt := ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
				return nil
			})
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func migrationsDir(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.MigrationsDir
}

// userCmd bootstraps accounts from the shell, typically the first staff
// administrator before anyone can sign in.
func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := account.NewUser{}
			in.AccountNumber, _ = cmd.Flags().GetString("account")
			in.Role, _ = cmd.Flags().GetString("role")
			in.Password, _ = cmd.Flags().GetString("password")
			if in.Password == "" {
				in.Password = os.Getenv("CARECONNECT_PASSWORD")
			}
			var err error
			if in.PatientID, err = optionalUUID(cmd, "patient-id"); err != nil {
				return err
			}
			if in.StaffID, err = optionalUUID(cmd, "staff-id"); err != nil {
				return err
			}

			return withPool(func(ctx context.Context, cfg *config.Config, d deps) error {
				u, err := newServices(d).accounts.CreateUser(ctx, in)
				if err != nil {
					return err
				}
				fmt.Printf("Created %s account %s (login %s, id %s)\n", u.Role, u.AccountNumber, u.Login, u.ID)
				return nil
			})
		},
	}
	createCmd.Flags().String("account", "", "Account number")
	createCmd.Flags().String("role", "staff", "Role: staff, doctor, medtech, radtech or patient")
	createCmd.Flags().String("password", "", "Initial password (or CARECONNECT_PASSWORD)")
	createCmd.Flags().String("patient-id", "", "Linked patient id for patient accounts")
	createCmd.Flags().String("staff-id", "", "Linked staff directory id")
	_ = createCmd.MarkFlagRequired("account")

	cmd.AddCommand(createCmd)
	return cmd
}

func optionalUUID(cmd *cobra.Command, name string) (*uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &id, nil
}

// withPool runs fn against a database-backed deps without the realtime
// listener or object storage.
func withPool(fn func(ctx context.Context, cfg *config.Config, d deps) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	sessions := auth.NewMemoryStore(0)
	defer sessions.Close()

	logger := newLogger(cfg.Env)
	return fn(ctx, cfg, deps{
		cfg:      cfg,
		logger:   logger,
		pool:     pool,
		tokens:   auth.NewTokenIssuer(cfg.SigningKey(), cfg.SessionTTL),
		sessions: sessions,
		blobs:    blobstore.NewMemoryStore(),
		pub:      realtime.NewFeed(pool, nil, logger),
		registry: prometheus.NewRegistry(),
	})
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	var sessions auth.SessionStore
	if cfg.RedisURL != "" {
		rs, err := auth.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rs.Close()
		sessions = rs
		logger.Info().Msg("sessions stored in redis")
	} else {
		ms := auth.NewMemoryStore(time.Minute)
		defer ms.Close()
		sessions = ms
		logger.Warn().Msg("REDIS_URL not set, sessions are kept in memory")
	}

	var blobs blobstore.Store
	if cfg.MinIOEndpoint != "" {
		blobs, err = blobstore.NewMinIOStore(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to object storage")
		}
		logger.Info().Str("bucket", cfg.MinIOBucket).Msg("imaging files stored in minio")
	} else {
		blobs = blobstore.NewMemoryStore()
		logger.Warn().Msg("MINIO_ENDPOINT not set, imaging files are kept in memory")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := realtime.NewHub(logger)
	feed := realtime.NewFeed(pool, hub, logger)
	go feed.Listen(ctx)

	d := deps{
		cfg:      cfg,
		logger:   logger,
		pool:     pool,
		tokens:   auth.NewTokenIssuer(cfg.SigningKey(), cfg.SessionTTL),
		sessions: sessions,
		blobs:    blobs,
		pub:      feed,
		hub:      hub,
		registry: registry,
	}
	e := newServer(d, newServices(d))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
