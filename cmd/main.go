package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "tumblelog/docs"
	"tumblelog/internal/handlers"
	"tumblelog/internal/logger"
	"tumblelog/internal/repository"
	"tumblelog/internal/server"
	"tumblelog/internal/service"

	"github.com/spf13/viper"
)

const defaultSweepInterval = 10 * time.Minute

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	if err := os.MkdirAll(uploadsDir(), 0o755); err != nil {
		log.Fatalw("failed to create uploads dir", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, serviceConfig(log))
	apiHandler := handlers.NewHandler(services, log, handlers.Config{
		TemplatesGlob: "web/templates/*.html",
		StaticDir:     "web/static",
		UploadsDir:    uploadsDir(),
	})

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start expired-session sweeper
	go services.Sessions.Run(ctx, sweepInterval())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "tumblelog.db")
		dbPath = "tumblelog.db"
	}
	return repository.InitDB(dbPath)
}

func uploadsDir() string {
	if dir := viper.GetString("uploads.dir"); dir != "" {
		return dir
	}
	return "uploads"
}

func sweepInterval() time.Duration {
	if d := viper.GetDuration("session.sweep_interval"); d > 0 {
		return d
	}
	return defaultSweepInterval
}

// serviceConfig collects service-level settings; the signing key must come
// from configuration, never from source.
func serviceConfig(log *logger.Logger) service.Config {
	key := viper.GetString("auth.signing_key")
	if key == "" {
		log.Fatalw("auth.signing_key not set in config")
	}
	return service.Config{
		SigningKey: key,
		TokenTTL:   viper.GetDuration("auth.token_ttl"),
		SessionTTL: viper.GetDuration("session.ttl"),
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
