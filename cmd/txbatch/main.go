// Command txbatch parses every eligible document under a directory through
// the parsing service, one at a time, recording results to the configured
// ledger, archive and metrics.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/textkernel/tx-go/internal/config"
)

func main() {
	var (
		root    = flag.String("root", "", "Directory to process (overrides batch.root)")
		recurse = flag.Bool("recurse", false, "Descend into subdirectories")
		kind    = flag.String("kind", "", "Document kind: resume or job (overrides batch.kind)")
		envFile = flag.String("env-file", ".env", "Optional dotenv file loaded before configuration")
	)
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Fatalf("load %s: %v", *envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	if *root != "" {
		cfg.Batch.Root = *root
	}
	if *recurse {
		cfg.Batch.Recurse = true
	}
	if *kind != "" {
		cfg.Batch.Kind = *kind
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, nil); err != nil {
		stop()
		os.Exit(1)
	}
}
