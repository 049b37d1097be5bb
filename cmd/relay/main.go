package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cbodonnell/quantro/pkg/log"
	"github.com/cbodonnell/quantro/pkg/relay"
	"github.com/cbodonnell/quantro/pkg/repositories"
	"github.com/cbodonnell/quantro/pkg/version"
	"github.com/cbodonnell/quantro/pkg/workers"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port to listen on")
	rows := flag.Int("rows", relay.DefaultRows, "Default board rows of new matches")
	cols := flag.Int("cols", relay.DefaultCols, "Default board columns of new matches")
	origins := flag.String("origins", "", "Comma separated origin patterns allowed to connect from a browser")
	snapshotInterval := flag.Int("snapshot-interval", relay.DefaultSnapshotInterval, "Cycle updates between persisted snapshots of a client's state")
	migrations := flag.String("migrations", "./migrations/sqlite", "SQLite migrations directory")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting relay server version %s", version.Get())
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	connStr := os.Getenv("QUANTRO_DATABASE_URL")
	if connStr == "" {
		connStr = "sqlite://quantro.db"
	}

	u, err := url.Parse(connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse connection string: %v", err))
	}

	var repository repositories.Repository
	switch u.Scheme {
	case "sqlite":
		repository, err = repositories.NewSQLiteRepository(ctx, u.Host+u.Path, *migrations)
		if err != nil {
			panic(fmt.Sprintf("Failed to create SQLite repository: %v", err))
		}
	case "postgres", "postgresql":
		repository = repositories.NewPostgresRepository(ctx, u.String())
	default:
		panic(fmt.Sprintf("Unknown database type %s", u.Scheme))
	}
	defer repository.Close(context.Background())

	snapshotChannelSize := 1000
	snapshotChan := make(chan workers.SnapshotEvent, snapshotChannelSize)
	snapshotWorker := workers.NewSnapshotWorker(workers.NewSnapshotWorkerOptions{
		Repository:   repository,
		SnapshotChan: snapshotChan,
	})
	go snapshotWorker.Start(ctx)

	var originPatterns []string
	if *origins != "" {
		originPatterns = strings.Split(*origins, ",")
	}
	server := relay.NewServer(relay.NewServerOptions{
		Port:             *port,
		Rows:             *rows,
		Cols:             *cols,
		Repository:       repository,
		SnapshotChan:     snapshotChan,
		SnapshotInterval: *snapshotInterval,
		OriginPatterns:   originPatterns,
	})
	go server.Start()

	<-ctx.Done()
	log.Info("Shutting down relay server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop relay server: %v", err)
	}
}
