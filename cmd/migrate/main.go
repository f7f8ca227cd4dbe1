package main

import (
	"fmt"

	"codeberg.org/studyhall/server/internal/config"
	"codeberg.org/studyhall/server/internal/logger"
	"codeberg.org/studyhall/server/internal/migrations"
)

func usage() {
	fmt.Println("Usage: migrate <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  up       - apply all pending migrations (or --steps n)")
	fmt.Println("  down     - roll back all migrations (or --steps n)")
	fmt.Println("  version  - print the current schema version")
	fmt.Println("\nOptions:")
	fmt.Println("  --steps <n>  - number of migrations to apply or roll back")
}

func main() {
	flags := config.ParseMigrateFlags()

	switch flags.Command {
	case "up", "down", "version":
	default:
		usage()
		logger.Fatal("unknown migrate command", "command", flags.Command)
	}

	databaseURL, err := config.LoadDatabaseURL()
	if err != nil {
		logger.FatalErr(err, "failed to load configuration")
	}

	migrator, err := migrations.New(databaseURL)
	if err != nil {
		logger.FatalErr(err, "failed to open migrations")
	}

	if err := run(migrator, flags); err != nil {
		migrator.Close() //nolint:errcheck,gosec // exiting anyway
		logger.FatalErr(err, "migration failed", "command", flags.Command)
	}

	if err := migrator.Close(); err != nil {
		logger.ErrorErr(err, "failed to close migrator")
	}
}

func run(migrator *migrations.Migrator, flags config.Flags) error {
	switch flags.Command {
	case "up":
		if flags.Steps > 0 {
			return migrator.Steps(flags.Steps)
		}

		return migrator.Up()

	case "down":
		if flags.Steps > 0 {
			return migrator.Steps(-flags.Steps)
		}

		return migrator.Down()

	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}

		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil

	default:
		return fmt.Errorf("unknown command %q", flags.Command)
	}
}
