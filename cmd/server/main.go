package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/config"
	"github.com/GriffinCanCode/gbbridge/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the environment
	port := flag.String("port", cfg.Server.Port, "Server port")
	fixtures := flag.String("fixtures", cfg.Host.Fixtures, "Host simulator fixture file (YAML)")
	debugMode := flag.String("debug-mode", cfg.Bridge.DebugMode.String(), "Dispatch debug mode: production, alert or suppress")
	desktop := flag.Bool("desktop", cfg.Bridge.DesktopMode, "Use the desktop fallback for request, location and preferences")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	mode, err := bridge.ParseDebugMode(*debugMode)
	if err != nil {
		log.Fatalf("Invalid -debug-mode: %v", err)
	}
	cfg.Server.Port = *port
	cfg.Host.Fixtures = *fixtures
	cfg.Bridge.DebugMode = mode
	cfg.Bridge.DesktopMode = *desktop
	cfg.Logging.Development = *dev

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
