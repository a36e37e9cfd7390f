package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/modhost/internal/infrastructure/config"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the environment
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Listen host")
	flag.StringVar(&cfg.Server.StaticDir, "static", cfg.Server.StaticDir, "Directory served under /static")
	flag.StringVar(&cfg.Module.URL, "module", cfg.Module.URL, "Module artifact URL or path")
	flag.StringVar(&cfg.Module.Name, "name", cfg.Module.Name, "Command name passed as argv[0]")
	flag.BoolVar(&cfg.Module.Streaming, "streaming", cfg.Module.Streaming, "Try the streaming load strategy first")
	flag.DurationVar(&cfg.Module.Timeout, "timeout", cfg.Module.Timeout, "Per-run timeout (0 disables)")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development logging")
	flag.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level")
	flag.Parse()

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-sigChan:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		if err != nil {
			_ = srv.Close()
			log.Fatalf("Server error: %v", err)
		}
	}

	if err := srv.Close(); err != nil {
		log.Printf("Error during close: %v", err)
	}
}
