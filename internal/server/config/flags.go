package config

import (
	"flag"
	"os"
	"time"

	"github.com/inkwell-app/inkwell/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-l int      lockout threshold (failed attempts)
//	-w int      lockout window, minutes
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-l", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	lockoutThreshold := fs.Int("l", config.LockoutThreshold, "failed attempts before temporary lockout")
	lockoutWindow := fs.Int("w", int(config.LockoutWindow.Minutes()), "lockout window (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.LockoutThreshold = *lockoutThreshold
	config.LockoutWindow = time.Duration(*lockoutWindow) * time.Minute
}
