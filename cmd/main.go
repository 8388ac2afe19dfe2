package main

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/api"
	"github.com/maxaizer/jobmatch/internal/config"
	"github.com/maxaizer/jobmatch/internal/docstore"
	"github.com/maxaizer/jobmatch/internal/identity"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/maxaizer/jobmatch/internal/metrics"
	"github.com/maxaizer/jobmatch/internal/repositories"
	"github.com/maxaizer/jobmatch/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func openStore(ctx context.Context, cfg config.DBConfig, dbContext *repositories.DbContext) (docstore.Store, error) {
	if cfg.Driver == config.DriverFirestore {
		store, err := docstore.NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			return nil, err
		}
		log.Infof("documents are stored in firestore project %s", cfg.FirestoreProjectID)
		return docstore.WithMetrics(store), nil
	}

	log.Infof("documents are stored in sqlite %s", cfg.ConnectionString)
	return docstore.WithMetrics(dbContext.Documents()), nil
}

func openDbContext(cfg *config.Config) *repositories.DbContext {
	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}

	err = dbContext.Migrate(cfg.DB.Driver == config.DriverSqlite)
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}
	return dbContext
}

func serve(cfg *config.Config) {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	dbContext := openDbContext(cfg)
	defer dbContext.Close()

	store, err := openStore(ctx, cfg.DB, dbContext)
	if err != nil {
		log.Fatalf("can't open document store: %v", err)
	}
	defer store.Close()

	bus := EventBus.New()
	if _, err = services.NewActivityTracker(bus); err != nil {
		log.Fatalf("can't create activity tracker: %v", err)
	}

	accounts := repositories.NewCachedAccounts(repositories.NewAccountsRepository(dbContext.DB))
	provider := identity.NewProvider(accounts, cfg.Auth.JwtSecret, cfg.Auth.TokenTTL)

	profiles := services.NewProfileResolver(store, provider, bus)
	jobs := services.NewJobCatalog(store, bus, cfg.Catalog.DefaultPageSize)
	applications := services.NewApplicationWorkflow(store, jobs, profiles, bus)

	stats, err := services.NewCatalogStats(jobs, applications, cfg.Catalog.StatsSchedule)
	if err != nil {
		log.Fatalf("can't create catalog stats: %v", err)
	}
	defer stats.Stop()

	server, err := api.NewServer(cfg.Server, api.Services{
		Profiles:     profiles,
		Jobs:         jobs,
		Applications: applications,
		SavedJobs:    services.NewSavedJobs(store, jobs, profiles, bus),
		Registration: services.NewRegistration(provider, store, bus),
		Auth:         provider,
	})
	if err != nil {
		log.Fatalf("can't create server: %v", err)
	}

	go func() {
		if err := server.Run(); err != nil {
			log.Errorf("HTTP server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down services...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shut down HTTP server: %v", err)
	}
	log.Info("Services stopped.")
}

func main() {
	var cfg *config.Config

	root := &cobra.Command{
		Use:   "jobmatch",
		Short: "Job matching backend for students and recruiters",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Get()
			logger.Setup(cfg.Logger)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Cleanup()
		},
		Run: func(cmd *cobra.Command, args []string) {
			serve(cfg)
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Run: func(cmd *cobra.Command, args []string) {
			serve(cfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		Run: func(cmd *cobra.Command, args []string) {
			dbContext := openDbContext(cfg)
			defer dbContext.Close()
			log.Info("Database migrated.")
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
