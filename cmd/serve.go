package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablehost/restaurantapi/internal/apidocs"
	"github.com/tablehost/restaurantapi/internal/auth"
	"github.com/tablehost/restaurantapi/internal/db/bunx"
	"github.com/tablehost/restaurantapi/internal/migrations"
	"github.com/tablehost/restaurantapi/internal/policy"
	"github.com/tablehost/restaurantapi/internal/repository"
	"github.com/tablehost/restaurantapi/internal/server"
	"github.com/tablehost/restaurantapi/internal/services/iam"
	"github.com/tablehost/restaurantapi/internal/services/records"
	"github.com/tablehost/restaurantapi/internal/services/validation"
	"github.com/tablehost/restaurantapi/internal/telemetry"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the restaurant API server",
	Long:  `Starts the HTTP server with the record routes and, when Google credentials are configured, the login flows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		shutdownTelemetry, err := telemetry.Init(ctx, cfg.Observability, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				logger.Warn("telemetry shutdown failed", zap.Error(err))
			}
		}()

		db, err := bunx.NewDB(ctx, bunx.Options{DSN: cfg.DatabaseURL, MaxOpenConns: cfg.MaxDBConnections})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		logger.Info("connected to database", zap.String("type", string(bunx.DetectDatabaseType(cfg.DatabaseURL))))

		if autoMigrate {
			group, err := migrations.Apply(ctx, db)
			if err != nil {
				return err
			}
			logger.Info("migrations applied", zap.Int64("group", group.ID))
		}

		// Initialize repositories
		operatorRepo := repository.NewBunOperatorRepository(db)
		customerRepo := repository.NewBunCustomerRepository(db)
		inventoryRepo := repository.NewBunInventoryRepository(db)
		orderRepo := repository.NewBunOrderRepository(db)

		var sessionRepo repository.SessionRepository = repository.NewBunSessionRepository(db)
		if cfg.Session.CacheSize > 0 {
			cached, err := repository.NewCachedSessionRepository(sessionRepo, cfg.Session.CacheSize)
			if err != nil {
				return fmt.Errorf("create session cache: %w", err)
			}
			sessionRepo = cached
		}

		serverMetrics, err := telemetry.NewServerMetrics()
		if err != nil {
			return fmt.Errorf("create server metrics: %w", err)
		}
		authMetrics, err := telemetry.NewAuthMetrics()
		if err != nil {
			return fmt.Errorf("create auth metrics: %w", err)
		}

		// Initialize services
		validator, err := validation.NewSchemaValidator(0)
		if err != nil {
			return fmt.Errorf("create validator: %w", err)
		}
		operators := records.NewOperators(operatorRepo, validator, logger.Named("operators"))
		customers := records.NewCustomers(customerRepo, validator, logger.Named("customers"))
		inventory := records.NewInventory(inventoryRepo, validator)
		orders := records.NewOrders(orderRepo, validator)

		tiers, err := auth.NewTierEnforcer()
		if err != nil {
			return fmt.Errorf("configure tier enforcer: %w", err)
		}
		engine := policy.NewEngine(tiers, orders, logger.Named("policy"), authMetrics)

		iamService, err := iam.NewService(iam.Dependencies{
			Operators: operatorRepo,
			Customers: customerRepo,
			Sessions:  sessionRepo,
			Logger:    logger.Named("iam"),
			Metrics:   authMetrics,
		})
		if err != nil {
			return fmt.Errorf("create IAM service: %w", err)
		}

		var providers []auth.IdentityProvider
		loginEnabled := cfg.Google.Enabled()
		if loginEnabled {
			adminFlow, err := auth.NewGoogleFlow(ctx, cfg.Google, auth.ClassOperator, cfg.Google.AdminCallbackURL, logger.Named("google"))
			if err != nil {
				return fmt.Errorf("configure operator login: %w", err)
			}
			customerFlow, err := auth.NewGoogleFlow(ctx, cfg.Google, auth.ClassCustomer, cfg.Google.CustomerCallbackURL, logger.Named("google"))
			if err != nil {
				return fmt.Errorf("configure customer login: %w", err)
			}
			providers = append(providers, adminFlow, customerFlow)
			logger.Info("google login enabled", zap.String("issuer", cfg.Google.Issuer))
		}

		healthHandler := func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `{"status":"ok","login_enabled":%t}`, loginEnabled)
		}

		docs, err := apidocs.Load(ctx, cfg.ServerURL)
		if err != nil {
			return err
		}
		docsHandler, err := apidocs.NewHandler(docs, server.APIDocsPath)
		if err != nil {
			return err
		}

		corsOpts := server.DefaultCORSOptions(cfg.CORS.AllowedOrigins)
		r := server.NewRouter(server.RouterOptions{
			Engine:            engine,
			IAM:               iamService,
			Operators:         operators,
			Customers:         customers,
			Inventory:         inventory,
			Orders:            orders,
			Providers:         providers,
			SessionCookieName: cfg.Session.CookieName,
			CORSOptions:       &corsOpts,
			Logger:            logger,
			Metrics:           serverMetrics,
			HealthHandler:     healthHandler,
			APIDocs:           docsHandler,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server", zap.String("addr", cfg.ServerAddr), zap.String("url", cfg.ServerURL))
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down gracefully", zap.String("signal", sig.String()))

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}
