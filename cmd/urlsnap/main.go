package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"urlsnap/internal/config"
	"urlsnap/internal/logger"
	"urlsnap/internal/storage"
	"urlsnap/pkg/api"
)

// One-shot runner: fetch the URLs given as arguments and print the report
// as JSON on stdout.
func main() {
	cfgPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	urls := flag.Args()
	if len(urls) == 0 {
		log.Fatal("usage: urlsnap [flags] <url> [url ...]")
	}

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
	report, err := svc.Fetch(context.Background(), urls)
	if err != nil {
		l.Err(err, "fetch failed")
		os.Exit(1)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		l.Err(err, "encode report")
		os.Exit(1)
	}
	fmt.Println(string(out))
}
