package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamehub/internal/igdb"
	"gamehub/internal/importer"
	"gamehub/pkg/database"
)

func main() {
	var (
		batchSize  = flag.Int("batch", 500, "games fetched per page")
		target     = flag.Int("target", 5000, "total games to import")
		delayMS    = flag.Int("delay-ms", 260, "pause between pages in milliseconds")
		checkpoint = flag.String("checkpoint", "import-checkpoint.json", "checkpoint file path")
	)
	flag.Parse()

	client, err := igdb.NewClientFromEnv()
	if err != nil {
		log.Fatalf("catalog credentials missing: %v", err)
	}

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("signal received: %s, finishing current batch", sig)
		cancel()
	}()

	runner := importer.NewRunner(client, db, *checkpoint)
	runner.BatchSize = *batchSize
	runner.Target = *target
	runner.Delay = time.Duration(*delayMS) * time.Millisecond

	if err := runner.Run(ctx); err != nil {
		log.Fatalf("import failed: %v", err)
	}
}
