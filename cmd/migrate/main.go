// Command migrate manages the PostgreSQL schema outside the API process.
//
//	migrate up      apply pending migrations
//	migrate down    revert the newest applied migration
//	migrate status  list migrations and when they were applied
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/asidocente/school-records/config"
	"github.com/asidocente/school-records/internal/infrastructure/persistence/postgres"
	"github.com/asidocente/school-records/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: migrate up|down|status")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.App.LogLevel),
		Format: logger.Format(cfg.App.LogFormat),
		Output: os.Stderr,
	})

	dbConfig := postgres.DefaultConfig()
	dbConfig.URL = cfg.Database.URL
	dbConfig.MaxConns = 2
	dbConfig.MinConns = 0
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	migrator := postgres.NewMigrator(conn)
	switch args[0] {
	case "up":
		if err := migrator.Migrate(ctx); err != nil {
			return err
		}
		log.Info("migrations applied")
	case "down":
		version, err := migrator.Rollback(ctx)
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("nothing to roll back")
		} else {
			log.Info("migration rolled back", "version", version)
		}
	case "status":
		status, err := migrator.Status(ctx)
		if err != nil {
			return err
		}
		return printStatus(out, status)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func printStatus(out io.Writer, status []postgres.Migration) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
	for _, m := range status {
		applied := "pending"
		if m.IsApplied {
			applied = m.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", m.Version, m.Name, applied)
	}
	fmt.Fprintf(w, "\n%d of %d applied\n", postgres.CountApplied(status), len(status))
	return w.Flush()
}
