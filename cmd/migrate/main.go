// Package main implements the migrate command, which applies or inspects the
// learnpath database schema using the migrations embedded in the postgres
// package.
//
// Usage:
//
//	migrate [-config-dir DIR] [up|down|reset|status|version]
//
// The command defaults to "up". Configuration comes from config.yaml, .env
// and LEARNPATH_* environment variables as described in internal/config.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/phrazzld/learnpath/internal/config"
	"github.com/phrazzld/learnpath/internal/platform/logger"
	"github.com/phrazzld/learnpath/internal/platform/postgres"
	"github.com/phrazzld/learnpath/internal/redact"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %s\n", redact.Error(err))
		os.Exit(1)
	}
}

// run parses args, loads configuration and executes one migration command.
func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("config-dir", ".", "directory containing config.yaml and .env")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd, err := parseCommand(fs.Args())
	if err != nil {
		return err
	}

	cfg, err := config.LoadFrom(*configDir, filepath.Join(*configDir, "config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	ctx := logger.WithLogger(context.Background(), log)

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return postgres.RunMigrations(ctx, db, cmd, log)
}

// parseCommand picks the migration command from the positional arguments.
func parseCommand(args []string) (postgres.MigrationCommand, error) {
	if len(args) == 0 {
		return postgres.MigrateUp, nil
	}
	if len(args) > 1 {
		return "", fmt.Errorf("expected one command, got %d", len(args))
	}

	cmd := postgres.MigrationCommand(args[0])
	switch cmd {
	case postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateReset,
		postgres.MigrateStatus, postgres.MigrateVersion:
		return cmd, nil
	default:
		return "", fmt.Errorf("unknown command %q (want up, down, reset, status or version)", args[0])
	}
}
