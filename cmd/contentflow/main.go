// Command contentflow serves the content approval engine over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/viant/contentflow"
	"github.com/viant/contentflow/api"
	"github.com/viant/contentflow/internal/logger"
)

func main() {
	configURL := flag.String("config", "", "config YAML location (file path or afs URL)")
	envFile := flag.String("env", ".env", "dotenv file applied over the config")
	flag.Parse()

	log := logger.Entry(logger.App)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := contentflow.LoadConfig(ctx, *configURL, *envFile)
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	srv, err := contentflow.New(ctx, contentflow.WithConfig(cfg))
	if err != nil {
		log.WithError(err).Fatal("failed to start")
	}
	stop := srv.StartScheduler(ctx)
	app := api.New(srv)

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Warn("http shutdown")
		}
	}()

	log.WithField("address", cfg.HTTP.Address).Info("starting server")
	if err := app.Listen(cfg.HTTP.Address, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.WithError(err).Error("server stopped")
	}
	stop()
	if err := srv.Close(context.Background()); err != nil {
		log.WithError(err).Warn("close")
	}
}
