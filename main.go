package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cian-radar/config"
	"cian-radar/geo"
	"cian-radar/scraper/cian"
	"cian-radar/services"
	"cian-radar/utils"
	"cian-radar/web"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

	logger.Info("=== cian-radar starting ===")
	logger.Info("Config — listen: %s | cian: %s | nominatim: %s | fetch timeout: %s",
		cfg.ListenAddr, cfg.CianURL, cfg.NominatimURL, cfg.FetchTimeout)

	geocoder := geo.NewNominatim(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.GeocodeInterval(), logger)
	fetcher := cian.New(cfg, geocoder, logger)
	analyzer := services.NewAnalyzer(logger)

	handler := web.NewHandler(geocoder, fetcher, analyzer, logger)
	server := web.NewServer(cfg.ListenAddr, handler.Router(), logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown: %v", err)
	}
	logger.Info("Bye")
}
