package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"urlsnap/internal/config"
	"urlsnap/internal/handler"
	"urlsnap/internal/logger"
	"urlsnap/internal/storage"
	"urlsnap/pkg/api"
)

// invokePath mirrors the Lambda runtime interface emulator, so existing
// invocation clients work against the daemon unchanged.
const invokePath = "/2015-03-31/functions/function/invocations"

func main() {
	cfgPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", ":9000", "listen address")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	l := logger.New(logger.Options{Level: cfg.Log.Level, Writers: cfg.Log.Writer, File: cfg.Log.File})

	var store *storage.Store
	if cfg.Sqlite.Dsn != "" {
		store, err = storage.Open(cfg.Sqlite.Dsn, cfg.Sqlite.Prefix, l)
		if err != nil {
			l.Err(err, "open storage")
			os.Exit(1)
		}
	}

	svc := api.NewService(cfg, store, l)
	h := handler.New(svc, l)

	mux := http.NewServeMux()
	mux.Handle(invokePath, h)
	srv := &http.Server{Addr: *addr, Handler: mux}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		l.Info("shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			l.Err(err, "server shutdown")
		}
	}()

	l.Info("server listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		l.Err(err, "server error")
		os.Exit(1)
	}
}
