package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/app"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/config"
	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/server"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("REMINDERS_CONFIG"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	a := app.New(cfg)
	srv := server.New(cfg.HTTPAddr, a.Router)

	pollCtx, stopPoll := context.WithCancel(context.Background())
	defer stopPoll()
	if cfg.PollEnabled {
		go func() {
			if err := a.Poller.Run(pollCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("poller error: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case sig := <-stop:
		log.Printf("signal %s received, shutting down", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
		return
	}
	stopPoll()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server error: %v", err)
	}
}
