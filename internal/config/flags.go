package config

import (
	"flag"
	"os"
)

// parses CLI flags for the migrate command
func ParseMigrateFlags() Flags {
	if len(os.Args) < 2 {
		return Flags{Command: "up"}
	}

	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	steps := fs.Int("steps", 0, "number of migrations to apply or roll back (0 = all)")
	fs.Parse(os.Args[2:]) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{Command: command, Steps: *steps}
}
